package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/N-Srikar/Athena/internal/model"
	"github.com/N-Srikar/Athena/pkg/redis"
)

func (s *Service) CreateBook(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	book, err := s.repo.CreateBook(ctx, req)
	if err != nil {
		return model.Book{}, err
	}
	s.invalidateBooks(ctx)
	return book, nil
}

func (s *Service) UpdateBook(ctx context.Context, bookUid string, req model.UpdateBookRequest) (model.Book, error) {
	book, err := s.repo.UpdateBook(ctx, bookUid, req)
	if err != nil {
		return model.Book{}, err
	}
	s.invalidateBooks(ctx)
	return book, nil
}

func (s *Service) DeleteBook(ctx context.Context, bookUid string) error {
	if err := s.repo.DeleteBook(ctx, bookUid); err != nil {
		return err
	}
	s.invalidateBooks(ctx)
	return nil
}

func (s *Service) GetBook(ctx context.Context, bookUid string) (model.Book, error) {
	return s.repo.GetBook(ctx, bookUid)
}

// ListBooks serves unpaged listings from the redis cache when it can; the
// cache is flushed on every catalog mutation.
func (s *Service) ListBooks(ctx context.Context, filter model.BookFilter, page, size int) (model.ListBooks, error) {
	cacheable := s.cache != nil && page == 0 && size == 0

	key := fmt.Sprintf(redis.KeyBooks, filter.Title, filter.Author, filter.Category)
	if cacheable {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var books model.ListBooks
			if err := json.Unmarshal(data, &books); err == nil {
				return books, nil
			}
		}
	}

	books, err := s.repo.ListBooks(ctx, filter, page, size)
	if err != nil {
		return model.ListBooks{}, err
	}

	if cacheable {
		if data, err := json.Marshal(books); err == nil {
			if err := s.cache.Set(ctx, key, data, redis.TTLBooks).Err(); err != nil {
				s.log.Debug("ListBooks cache set", zap.Error(err))
			}
		}
	}
	return books, nil
}

func (s *Service) invalidateBooks(ctx context.Context) {
	if s.cache == nil {
		return
	}
	iter := s.cache.Scan(ctx, 0, fmt.Sprintf(redis.KeyBooks, "*", "*", "*"), 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.log.Debug("invalidateBooks scan", zap.Error(err))
		return
	}
	if len(keys) > 0 {
		if err := s.cache.Del(ctx, keys...).Err(); err != nil {
			s.log.Debug("invalidateBooks del", zap.Error(err))
		}
	}
}
