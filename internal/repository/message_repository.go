package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/timeclock/internal/domain"
)

// MessageRepository manages inbox messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id string) (*domain.Message, error)
	ListInbox(ctx context.Context, receiver string) ([]domain.Message, error)
	MarkRead(ctx context.Context, id string) error
	SetDeleted(ctx context.Context, id string, deleted bool) error
}

type messageRepository struct {
	db DB
}

// NewMessageRepository builds repository.
func NewMessageRepository(db DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (id, sender, receiver, subject, message, timestamp, is_read, deleted)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.db.Exec(ctx, query,
		msg.ID,
		msg.Sender,
		msg.Receiver,
		msg.Subject,
		msg.Body,
		msg.Timestamp,
		msg.IsRead,
		msg.Deleted,
	)
	return mapWriteError(err)
}

func (r *messageRepository) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	const query = `
        SELECT id, sender, receiver, subject, message, timestamp, is_read, deleted
        FROM messages WHERE id=$1`
	var msg domain.Message
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&msg.ID,
		&msg.Sender,
		&msg.Receiver,
		&msg.Subject,
		&msg.Body,
		&msg.Timestamp,
		&msg.IsRead,
		&msg.Deleted,
	); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) ListInbox(ctx context.Context, receiver string) ([]domain.Message, error) {
	const query = `
        SELECT id, sender, receiver, subject, message, timestamp, is_read, deleted
        FROM messages WHERE receiver=$1 AND deleted=FALSE ORDER BY timestamp DESC`
	rows, err := r.db.Query(ctx, query, receiver)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Message{}
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.Sender,
			&msg.Receiver,
			&msg.Subject,
			&msg.Body,
			&msg.Timestamp,
			&msg.IsRead,
			&msg.Deleted,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}

func (r *messageRepository) MarkRead(ctx context.Context, id string) error {
	const query = `UPDATE messages SET is_read=TRUE WHERE id=$1`
	return r.execOne(ctx, query, id)
}

func (r *messageRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	const query = `UPDATE messages SET deleted=$1 WHERE id=$2`
	return r.execOne(ctx, query, deleted, id)
}

func (r *messageRepository) execOne(ctx context.Context, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
