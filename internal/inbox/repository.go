package inbox

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/borghese/vitrine/internal/contact"
)

const selectColumns = "id, name, email, phone, subject, message, delivered, relay, sent_at, created_at"

// Repository stores contact messages.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a message repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Add records a submission and its outcome.
func (r *Repository) Add(ctx context.Context, p contact.Payload, delivered bool, relay string) (*Message, error) {
	if p.Name == "" || p.Email == "" {
		return nil, fmt.Errorf("name and email are required")
	}

	var sentAt any
	if !p.SentAt.IsZero() {
		sentAt = p.SentAt.UTC()
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO contact_messages (name, email, phone, subject, message, delivered, relay, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Email, p.Phone, p.Subject, p.Message, delivered, relay, sentAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	m, err := scanMessage(r.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM contact_messages WHERE id = ?", id,
	))
	if err != nil {
		return nil, fmt.Errorf("reading back message: %w", err)
	}
	return m, nil
}

// List returns the most recent messages, newest first. A limit of zero or
// less returns all of them.
func (r *Repository) List(ctx context.Context, limit int) (msgs []*Message, err error) {
	query := "SELECT " + selectColumns + " FROM contact_messages ORDER BY id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return msgs, nil
}

// Undelivered returns messages the relay rejected, oldest first, so they
// can be followed up by hand.
func (r *Repository) Undelivered(ctx context.Context) (msgs []*Message, err error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM contact_messages WHERE delivered = 0 ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("listing undelivered messages: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return msgs, nil
}

// Delete removes a message by ID.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM contact_messages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("message %d not found", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (*Message, error) {
	var m Message
	var sentAt sql.NullTime
	if err := s.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Body,
		&m.Delivered, &m.Relay, &sentAt, &m.CreatedAt); err != nil {
		return nil, err
	}
	if sentAt.Valid {
		t := sentAt.Time
		m.SentAt = &t
	}
	return &m, nil
}

// RecordingRelay wraps a relay and records every submission it handles.
// A failure to record is logged and never changes the outcome.
type RecordingRelay struct {
	next contact.Relay
	repo *Repository
	name string
	now  func() time.Time
}

// NewRecordingRelay records submissions passed to next under the relay name.
func NewRecordingRelay(next contact.Relay, repo *Repository, name string) *RecordingRelay {
	return &RecordingRelay{next: next, repo: repo, name: name, now: time.Now}
}

// Submit forwards p and records the outcome.
func (r *RecordingRelay) Submit(ctx context.Context, p contact.Payload) contact.Outcome {
	if p.SentAt.IsZero() {
		p.SentAt = r.now()
	}
	out := r.next.Submit(ctx, p)
	if _, err := r.repo.Add(ctx, p, out.Success, r.name); err != nil {
		slog.Error("recording contact message", "error", err)
	}
	return out
}
