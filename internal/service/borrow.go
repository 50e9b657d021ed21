package service

import (
	"context"
	"time"

	"github.com/N-Srikar/Athena/internal/model"
	"github.com/N-Srikar/Athena/pkg/kafka"
)

const loanPeriod = 14 * 24 * time.Hour

func (s *Service) RequestBorrow(ctx context.Context, req model.CreateBorrowRequest) (model.BorrowRecord, error) {
	now := s.now()
	rec, err := s.repo.CreateBorrow(ctx, req.Username, req.BookUid, now, now.Add(loanPeriod))
	if err != nil {
		return model.BorrowRecord{}, err
	}
	s.publishEvent(kafka.EventBorrowRequested, rec.RecordUid, rec.BookUid, rec.Username)
	return rec, nil
}

func (s *Service) ApproveBorrow(ctx context.Context, recordUid string) (model.BorrowRecord, error) {
	rec, err := s.repo.ApproveBorrow(ctx, recordUid, s.now())
	if err != nil {
		return model.BorrowRecord{}, err
	}
	s.publishEvent(kafka.EventBorrowApproved, rec.RecordUid, rec.BookUid, rec.Username)
	return rec, nil
}

func (s *Service) RejectBorrow(ctx context.Context, recordUid string) (model.BorrowRecord, error) {
	rec, err := s.repo.RejectBorrow(ctx, recordUid, s.now())
	if err != nil {
		return model.BorrowRecord{}, err
	}
	s.publishEvent(kafka.EventBorrowRejected, rec.RecordUid, rec.BookUid, rec.Username)
	return rec, nil
}

func (s *Service) ReturnBorrow(ctx context.Context, recordUid string, req model.ReturnBorrowRequest) (model.BorrowRecord, error) {
	returnedAt := s.now()
	if req.Date != nil {
		returnedAt = req.Date.UTC()
	}
	rec, err := s.repo.ReturnBorrow(ctx, recordUid, returnedAt)
	if err != nil {
		return model.BorrowRecord{}, err
	}
	s.publishEvent(kafka.EventBookReturned, rec.RecordUid, rec.BookUid, rec.Username)
	return rec, nil
}

func (s *Service) MarkFinePaid(ctx context.Context, recordUid string) (model.BorrowRecord, error) {
	return s.repo.MarkFinePaid(ctx, recordUid)
}

func (s *Service) GetBorrows(ctx context.Context, filter model.BorrowFilter) ([]model.BorrowRecord, error) {
	return s.repo.ListBorrows(ctx, filter)
}

func (s *Service) GetDueBorrows(ctx context.Context, username string) ([]model.BorrowRecord, error) {
	return s.repo.ListDueBorrows(ctx, username, s.now())
}

func (s *Service) GetOverdueBorrows(ctx context.Context) ([]model.BorrowRecord, error) {
	return s.repo.ListOverdueBorrows(ctx, s.now())
}

func (s *Service) CheckAvailable(ctx context.Context, bookUid string) (model.AvailableResponse, error) {
	count, err := s.repo.AvailableCopies(ctx, bookUid)
	if err != nil {
		return model.AvailableResponse{}, err
	}
	return model.AvailableResponse{BookUid: bookUid, AvailableCopies: count}, nil
}
