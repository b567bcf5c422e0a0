package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository defines the interface for clarification session persistence.
// Questions and answers are loaded through their own repositories.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *entity.ClarificationSession) (*entity.ClarificationSession, error)
	GetSessionByID(ctx context.Context, id string) (*entity.ClarificationSession, error)
	UpdateSessionStatus(ctx context.Context, id string, status entity.SessionStatus) error
	UpdateSessionProgress(ctx context.Context, id string, currentQuestionIndex int, isComplete bool) error
	UpdateSessionError(ctx context.Context, id string, message string) error
	CompleteSession(ctx context.Context, id string, planID string) error
	DeleteSession(ctx context.Context, id string) error
}

var _ SessionRepository = &SessionPostgres{}

// SessionPostgres implements SessionRepository using PostgreSQL
type SessionPostgres struct {
	db *pgxpool.Pool
}

func NewSessionPostgres(db *pgxpool.Pool) *SessionPostgres {
	return &SessionPostgres{db: db}
}

const sessionColumns = `id, plan_id, status, current_question_index, is_complete, error, created_at, updated_at, completed_at`

func (r *SessionPostgres) CreateSession(ctx context.Context, session *entity.ClarificationSession) (*entity.ClarificationSession, error) {
	sessionID, err := pgUUID(session.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	planID, err := pgUUIDPtr(session.PlanID)
	if err != nil {
		return nil, fmt.Errorf("invalid plan ID: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO clarification_sessions (id, plan_id, status, current_question_index)
		VALUES ($1, $2, $3, $4)
		RETURNING `+sessionColumns,
		sessionID, planID, string(session.Status), session.CurrentQuestionIndex,
	)

	created, err := scanSession(row)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return created, nil
}

func (r *SessionPostgres) GetSessionByID(ctx context.Context, id string) (*entity.ClarificationSession, error) {
	sessionID, err := pgUUID(id)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM clarification_sessions
		WHERE id = $1`,
		sessionID,
	)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return session, nil
}

func (r *SessionPostgres) UpdateSessionStatus(ctx context.Context, id string, status entity.SessionStatus) error {
	sessionID, err := pgUUID(id)
	if err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE clarification_sessions
		SET status = $2, updated_at = now()
		WHERE id = $1`,
		sessionID, string(status),
	)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrSessionNotFound
	}

	return nil
}

func (r *SessionPostgres) UpdateSessionProgress(ctx context.Context, id string, currentQuestionIndex int, isComplete bool) error {
	sessionID, err := pgUUID(id)
	if err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE clarification_sessions
		SET current_question_index = $2, is_complete = $3, updated_at = now()
		WHERE id = $1`,
		sessionID, currentQuestionIndex, isComplete,
	)
	if err != nil {
		return fmt.Errorf("update session progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrSessionNotFound
	}

	return nil
}

func (r *SessionPostgres) UpdateSessionError(ctx context.Context, id string, message string) error {
	sessionID, err := pgUUID(id)
	if err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE clarification_sessions
		SET status = $2, error = $3, updated_at = now()
		WHERE id = $1`,
		sessionID, string(entity.SessionStatusError), message,
	)
	if err != nil {
		return fmt.Errorf("update session error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrSessionNotFound
	}

	return nil
}

func (r *SessionPostgres) CompleteSession(ctx context.Context, id string, planID string) error {
	sessionID, err := pgUUID(id)
	if err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	plan, err := pgUUID(planID)
	if err != nil {
		return fmt.Errorf("invalid plan ID: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE clarification_sessions
		SET status = $2, plan_id = $3, completed_at = now(), updated_at = now()
		WHERE id = $1`,
		sessionID, string(entity.SessionStatusCompleted), plan,
	)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrSessionNotFound
	}

	return nil
}

func (r *SessionPostgres) DeleteSession(ctx context.Context, id string) error {
	sessionID, err := pgUUID(id)
	if err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM clarification_sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrSessionNotFound
	}

	return nil
}

func scanSession(row pgx.Row) (*entity.ClarificationSession, error) {
	var (
		id          pgtype.UUID
		planID      pgtype.UUID
		status      string
		index       int32
		isComplete  bool
		errText     pgtype.Text
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
		completedAt pgtype.Timestamptz
	)

	if err := row.Scan(&id, &planID, &status, &index, &isComplete, &errText, &createdAt, &updatedAt, &completedAt); err != nil {
		return nil, err
	}

	return &entity.ClarificationSession{
		ID:                   uuidString(id),
		PlanID:               uuidStringPtr(planID),
		Status:               entity.SessionStatus(status),
		CurrentQuestionIndex: int(index),
		IsComplete:           isComplete,
		Error:                textPtr(errText),
		CreatedAt:            createdAt.Time,
		UpdatedAt:            updatedAt.Time,
		CompletedAt:          timePtr(completedAt),
	}, nil
}
