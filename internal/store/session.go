package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/NadavGB86/event-pragmetizer-oss/core/db"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
)

const uniqueViolation = "23505"

type sessionStore struct {
	db *db.DB
}

func newSessionStore(database *db.DB) SessionStore {
	return &sessionStore{db: database}
}

func (s *sessionStore) Create(ctx context.Context, sess *model.Session) error {
	state, err := json.Marshal(sess.State)
	if err != nil {
		return fmt.Errorf("encoding session state: %w", err)
	}

	row := s.db.Querier().QueryRow(ctx, `
		INSERT INTO planning_sessions (id, version, phase, state)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		sess.ID, sess.State.Version, string(sess.State.Data.Phase), state)
	if err := row.Scan(&sess.CreatedAt, &sess.UpdatedAt); err != nil {
		return insertError(err)
	}
	return nil
}

// insertError maps a duplicate primary key to ErrAlreadyExists.
func insertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrAlreadyExists
	}
	return err
}

func (s *sessionStore) Get(ctx context.Context, id int64) (*model.Session, error) {
	return getSession(ctx, s.db.Querier(), id, false)
}

func (s *sessionStore) Update(ctx context.Context, id int64, fn func(sess *model.Session) error) (*model.Session, error) {
	var out *model.Session
	err := s.db.WithTx(ctx, func(q db.Querier) error {
		sess, err := getSession(ctx, q, id, true)
		if err != nil {
			return err
		}
		if err := fn(sess); err != nil {
			return err
		}

		state, err := json.Marshal(sess.State)
		if err != nil {
			return fmt.Errorf("encoding session state: %w", err)
		}
		if err := q.QueryRow(ctx, `
			UPDATE planning_sessions
			SET version = $2, phase = $3, state = $4, updated_at = now()
			WHERE id = $1
			RETURNING updated_at`,
			id, sess.State.Version, string(sess.State.Data.Phase), state,
		).Scan(&sess.UpdatedAt); err != nil {
			return err
		}
		out = sess
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *sessionStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Querier().Exec(ctx, `DELETE FROM planning_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func getSession(ctx context.Context, q db.Querier, id int64, forUpdate bool) (*model.Session, error) {
	query := `SELECT id, state, created_at, updated_at FROM planning_sessions WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		sess  model.Session
		state []byte
	)
	if err := q.QueryRow(ctx, query, id).Scan(&sess.ID, &state, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(state, &sess.State); err != nil {
		return nil, fmt.Errorf("decoding session %d state: %w", id, err)
	}
	return &sess, nil
}
