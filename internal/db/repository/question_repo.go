package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gokatarajesh/trivia-api/internal/trivia"
)

// QuestionRepository is the Postgres-backed trivia.QuestionStore.
//
// The legacy schema stores questions.category as TEXT even though category
// identifiers are integers, so every read parses and every write/filter
// formats the id. Filtering on the raw column without normalizing produced
// spurious empty results in the original surface.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

var _ trivia.QuestionStore = (*QuestionRepository)(nil)

func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = "id, question, answer, category, difficulty"

// All returns every question ordered by identifier ascending, the stable
// ordering pagination depends on.
func (r *QuestionRepository) All(ctx context.Context) ([]trivia.Question, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+questionColumns+" FROM questions ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()
	return collectQuestions(rows)
}

// ByID fetches a single question; the boolean reports absence.
func (r *QuestionRepository) ByID(ctx context.Context, id int64) (trivia.Question, bool, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+questionColumns+" FROM questions WHERE id = $1", id)
	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return trivia.Question{}, false, nil
		}
		return trivia.Question{}, false, fmt.Errorf("query question %d: %w", id, err)
	}
	return q, true, nil
}

// ByCategory filters on the normalized text form of categoryID.
func (r *QuestionRepository) ByCategory(ctx context.Context, categoryID int64) ([]trivia.Question, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+questionColumns+" FROM questions WHERE category = $1 ORDER BY id ASC",
		strconv.FormatInt(categoryID, 10))
	if err != nil {
		return nil, fmt.Errorf("query questions by category: %w", err)
	}
	defer rows.Close()
	return collectQuestions(rows)
}

// Search matches term as a case-insensitive substring of the question text.
func (r *QuestionRepository) Search(ctx context.Context, term string) ([]trivia.Question, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+questionColumns+" FROM questions WHERE question ILIKE '%' || $1 || '%' ORDER BY id ASC",
		term)
	if err != nil {
		return nil, fmt.Errorf("search questions: %w", err)
	}
	defer rows.Close()
	return collectQuestions(rows)
}

// Insert persists q and returns it with the assigned identifier.
func (r *QuestionRepository) Insert(ctx context.Context, q trivia.Question) (trivia.Question, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO questions (question, answer, category, difficulty)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, q.Question, q.Answer, categoryText(q.CategoryID), q.Difficulty).Scan(&q.ID)
	if err != nil {
		return trivia.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

// Delete removes the row; the boolean reports whether anything was deleted.
func (r *QuestionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM questions WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete question %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *QuestionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM questions").Scan(&count); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

func collectQuestions(rows pgx.Rows) ([]trivia.Question, error) {
	var questions []trivia.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return questions, nil
}

func scanQuestion(row pgx.Row) (trivia.Question, error) {
	var (
		q   trivia.Question
		raw *string
	)
	if err := row.Scan(&q.ID, &q.Question, &q.Answer, &raw, &q.Difficulty); err != nil {
		return trivia.Question{}, err
	}
	q.CategoryID = parseCategoryRef(raw)
	return q, nil
}

// parseCategoryRef normalizes the legacy text column to an integer category
// reference. Unparsable or non-positive values count as unset.
func parseCategoryRef(raw *string) *int64 {
	if raw == nil {
		return nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(*raw), 10, 64)
	if err != nil || id < 1 {
		return nil
	}
	return &id
}

func categoryText(id *int64) *string {
	if id == nil {
		return nil
	}
	s := strconv.FormatInt(*id, 10)
	return &s
}
