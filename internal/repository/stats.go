package repository

import (
	"context"

	"github.com/N-Srikar/Athena/internal/model"
	"github.com/N-Srikar/Athena/pkg/kafka"
)

func (r *repository) InsertEvent(ctx context.Context, event kafka.BorrowEvent) error {
	q, args, err := qb.Insert(eventsTableName).
		Columns("event_type", "record_uid", "book_uid", "username", "occurred_at").
		Values(event.EventType, event.RecordUid, event.BookUid, event.Username, event.OccurredAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}

func (r *repository) Stats(ctx context.Context) ([]model.StatsRow, error) {
	q := `
select event_type, count(*) as total
from borrow_events
group by event_type
order by event_type`
	var rows []model.StatsRow
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}
