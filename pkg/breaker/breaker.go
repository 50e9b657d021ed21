package breaker

import (
	"errors"
	"sync"
	"time"
)

type state uint8

const (
	closed state = iota + 1
	open
	halfOpen
)

var ErrOpen = errors.New("circuit breaker is open")

// Breaker is a sliding-window circuit breaker. It opens once the failure
// share of the last recordLength calls reaches percentile, stays open for
// timeout, then lets probes through until recoveryRequests of them succeed
// in a row.
type Breaker interface {
	Call(fn func() error) error
	Reset()
}

type breaker struct {
	mu sync.Mutex

	state           state
	recordLength    int
	timeout         time.Duration
	lastAttemptedAt time.Time
	percentile      float64

	buffer []bool
	pos    int

	recoveryRequests int
	successCount     int
}

func New(recordLength int, timeout time.Duration, percentile float64, recoveryRequests int) Breaker {
	return &breaker{
		state:            closed,
		recordLength:     recordLength,
		timeout:          timeout,
		percentile:       percentile,
		buffer:           make([]bool, recordLength),
		recoveryRequests: recoveryRequests,
	}
}

func (b *breaker) Call(fn func() error) error {
	b.mu.Lock()
	if b.state == open {
		if elapsed := time.Since(b.lastAttemptedAt); elapsed > b.timeout {
			b.state = halfOpen
			b.successCount = 0
		} else {
			b.mu.Unlock()
			return ErrOpen
		}
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()

	b.buffer[b.pos] = err != nil
	b.pos = (b.pos + 1) % b.recordLength

	if b.state == halfOpen {
		if err != nil {
			b.successCount = 0
			b.state = open
			b.lastAttemptedAt = time.Now()
		} else {
			b.successCount++
			if b.successCount > b.recoveryRequests {
				b.Reset()
			}
		}
		return err
	}

	fails := 0
	for _, failed := range b.buffer {
		if failed {
			fails++
		}
	}
	if float64(fails)/float64(b.recordLength) >= b.percentile {
		b.state = open
		b.successCount = 0
		b.lastAttemptedAt = time.Now()
	}

	return err
}

func (b *breaker) Reset() {
	for i := range b.buffer {
		b.buffer[i] = false
	}
	b.successCount = 0
	b.pos = 0
	b.state = closed
}
