// Package fine computes the overdue penalty for a returned book.
// The schedule is tiered: the first five late days are free, then the
// per-day rate climbs the longer the book is kept.
package fine

import (
	"time"
)

const (
	graceDays = 5
	tierOne   = 15
	tierTwo   = 30

	tierOneRate = 5
	tierTwoRate = 10
	overRate    = 15
)

// Calculate returns the fine in whole rupees for a book due at due and
// handed back at returned. A book returned exactly at the due instant is
// not overdue. Partial late days count as full days.
func Calculate(due, returned time.Time) int64 {
	if !returned.After(due) {
		return 0
	}

	days := daysLate(due, returned)
	switch {
	case days <= graceDays:
		return 0
	case days <= tierOne:
		return (days - graceDays) * tierOneRate
	case days <= tierTwo:
		return (tierOne-graceDays)*tierOneRate + (days-tierOne)*tierTwoRate
	default:
		return (tierOne-graceDays)*tierOneRate + (tierTwo-tierOne)*tierTwoRate + (days-tierTwo)*overRate
	}
}

func daysLate(due, returned time.Time) int64 {
	d := returned.Sub(due)
	days := int64(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}
