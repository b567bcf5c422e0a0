package repository

import (
	"context"
	"fmt"

	"github.com/24thNight/clarify-backend/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnswerRepository defines the interface for answer persistence. Answers are
// append-only, so there are no update or delete operations.
type AnswerRepository interface {
	CreateAnswer(ctx context.Context, answer *entity.Answer) (*entity.Answer, error)
	ListAnswersBySession(ctx context.Context, sessionID string) ([]entity.Answer, error)
	CountAnsweredQuestions(ctx context.Context, sessionID string) (int, error)
}

var _ AnswerRepository = &AnswerPostgres{}

type AnswerPostgres struct {
	db *pgxpool.Pool
}

func NewAnswerPostgres(db *pgxpool.Pool) *AnswerPostgres {
	return &AnswerPostgres{db: db}
}

const answerColumns = `id, session_id, question_id, value, submitted_at`

func (r *AnswerPostgres) CreateAnswer(ctx context.Context, answer *entity.Answer) (*entity.Answer, error) {
	answerID, err := pgUUID(answer.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid answer ID: %w", err)
	}

	sessionID, err := pgUUID(answer.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	questionID, err := pgUUID(answer.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("invalid question ID: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO session_answers (id, session_id, question_id, value)
		VALUES ($1, $2, $3, $4)
		RETURNING `+answerColumns,
		answerID, sessionID, questionID, answer.Value,
	)

	created, err := scanAnswer(row)
	if err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}

	return created, nil
}

func (r *AnswerPostgres) ListAnswersBySession(ctx context.Context, sessionID string) ([]entity.Answer, error) {
	sid, err := pgUUID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+answerColumns+`
		FROM session_answers
		WHERE session_id = $1
		ORDER BY submitted_at`,
		sid,
	)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var answers []entity.Answer
	for rows.Next() {
		answer, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, *answer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	return answers, nil
}

// CountAnsweredQuestions counts distinct questions with at least one answer.
// Resubmissions add rows but must not inflate the finalization gate.
func (r *AnswerPostgres) CountAnsweredQuestions(ctx context.Context, sessionID string) (int, error) {
	sid, err := pgUUID(sessionID)
	if err != nil {
		return 0, fmt.Errorf("invalid session ID: %w", err)
	}

	var count int
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT question_id)
		FROM session_answers
		WHERE session_id = $1`,
		sid,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count answered questions: %w", err)
	}

	return count, nil
}

func scanAnswer(row pgx.Row) (*entity.Answer, error) {
	var (
		id          pgtype.UUID
		sessionID   pgtype.UUID
		questionID  pgtype.UUID
		value       string
		submittedAt pgtype.Timestamptz
	)

	if err := row.Scan(&id, &sessionID, &questionID, &value, &submittedAt); err != nil {
		return nil, err
	}

	return &entity.Answer{
		ID:          uuidString(id),
		SessionID:   uuidString(sessionID),
		QuestionID:  uuidString(questionID),
		Value:       value,
		SubmittedAt: submittedAt.Time,
	}, nil
}
