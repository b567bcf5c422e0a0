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

// QuestionRepository defines the interface for frozen question persistence
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, question *entity.Question) (*entity.Question, error)
	GetQuestionByID(ctx context.Context, id string) (*entity.Question, error)
	ListQuestionsBySession(ctx context.Context, sessionID string) ([]entity.Question, error)
}

var _ QuestionRepository = &QuestionPostgres{}

type QuestionPostgres struct {
	db *pgxpool.Pool
}

func NewQuestionPostgres(db *pgxpool.Pool) *QuestionPostgres {
	return &QuestionPostgres{db: db}
}

const questionColumns = `id, session_id, position, kind, text, options, required, created_at`

func (r *QuestionPostgres) CreateQuestion(ctx context.Context, question *entity.Question) (*entity.Question, error) {
	questionID, err := pgUUID(question.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid question ID: %w", err)
	}

	sessionID, err := pgUUID(question.SessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO session_questions (id, session_id, position, kind, text, options, required)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+questionColumns,
		questionID, sessionID, question.Position, string(question.Kind),
		question.Text, question.Options, question.Required,
	)

	created, err := scanQuestion(row)
	if err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	return created, nil
}

func (r *QuestionPostgres) GetQuestionByID(ctx context.Context, id string) (*entity.Question, error) {
	questionID, err := pgUUID(id)
	if err != nil {
		return nil, fmt.Errorf("invalid question ID: %w", err)
	}

	row := r.db.QueryRow(ctx, `
		SELECT `+questionColumns+`
		FROM session_questions
		WHERE id = $1`,
		questionID,
	)

	question, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}

	return question, nil
}

func (r *QuestionPostgres) ListQuestionsBySession(ctx context.Context, sessionID string) ([]entity.Question, error) {
	sid, err := pgUUID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+questionColumns+`
		FROM session_questions
		WHERE session_id = $1
		ORDER BY position`,
		sid,
	)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []entity.Question
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, *question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	return questions, nil
}

func scanQuestion(row pgx.Row) (*entity.Question, error) {
	var (
		id        pgtype.UUID
		sessionID pgtype.UUID
		position  int32
		kind      string
		text      string
		options   []string
		required  bool
		createdAt pgtype.Timestamptz
	)

	if err := row.Scan(&id, &sessionID, &position, &kind, &text, &options, &required, &createdAt); err != nil {
		return nil, err
	}

	return &entity.Question{
		ID:        uuidString(id),
		SessionID: uuidString(sessionID),
		Position:  int(position),
		Kind:      entity.QuestionKind(kind),
		Text:      text,
		Options:   options,
		Required:  required,
		CreatedAt: createdAt.Time,
	}, nil
}
