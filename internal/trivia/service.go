package trivia

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// QuestionStore is the persistence collaborator for questions. All returns
// records ordered by identifier ascending; ByID and Delete report absence
// through their boolean rather than an error.
type QuestionStore interface {
	All(ctx context.Context) ([]Question, error)
	ByID(ctx context.Context, id int64) (Question, bool, error)
	ByCategory(ctx context.Context, categoryID int64) ([]Question, error)
	Search(ctx context.Context, term string) ([]Question, error)
	Insert(ctx context.Context, q Question) (Question, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}

// CategoryStore is the persistence collaborator for categories.
type CategoryStore interface {
	All(ctx context.Context) ([]Category, error)
	Count(ctx context.Context) (int, error)
}

// Service implements the query/selection engine over injected stores. It
// holds no per-request state; quiz progress is supplied by the caller on
// every draw.
type Service struct {
	questions  QuestionStore
	categories CategoryStore
	cache      CategoryCache
	selector   Selector
	pageSize   int
	logger     zerolog.Logger
}

// ServiceOptions tunes optional collaborators.
type ServiceOptions struct {
	PageSize int
	Cache    CategoryCache
	Selector Selector
}

func NewService(questions QuestionStore, categories CategoryStore, opts ServiceOptions, logger zerolog.Logger) *Service {
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Service{
		questions:  questions,
		categories: categories,
		cache:      opts.Cache,
		selector:   opts.Selector,
		pageSize:   pageSize,
		logger:     logger.With().Str("component", "trivia_service").Logger(),
	}
}

// QuestionPage is one page of the full listing plus the counts clients use
// to render pagination controls.
type QuestionPage struct {
	Questions     []Question
	Total         int
	CategoryCount int
}

// ListQuestions returns the page-th page of all questions ordered by id. A
// page past the last page of a non-empty set is NotFound; page 1 of an empty
// store is a successful empty listing.
func (s *Service) ListQuestions(ctx context.Context, page int) (QuestionPage, error) {
	all, err := s.questions.All(ctx)
	if err != nil {
		return QuestionPage{}, wrapStore(err, "list questions")
	}

	items := Paginate(all, page, s.pageSize)
	if len(items) == 0 && len(all) > 0 {
		return QuestionPage{}, NotFoundf("page %d is past the last page", page)
	}

	categoryCount, err := s.categories.Count(ctx)
	if err != nil {
		return QuestionPage{}, wrapStore(err, "count categories")
	}

	return QuestionPage{
		Questions:     items,
		Total:         len(all),
		CategoryCount: categoryCount,
	}, nil
}

// ListCategories returns the id-to-label lookup table, preferring the cache
// when one is configured. Cache failures are logged and fall through to the
// store.
func (s *Service) ListCategories(ctx context.Context) (map[int64]string, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("category cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	categories, err := s.categories.All(ctx)
	if err != nil {
		return nil, wrapStore(err, "list categories")
	}

	lookup := make(map[int64]string, len(categories))
	for _, c := range categories {
		lookup[c.ID] = c.Type
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, lookup); err != nil {
			s.logger.Warn().Err(err).Msg("category cache write failed")
		}
	}
	return lookup, nil
}

// QuestionsByCategory returns every question referencing categoryID, in id
// order. A category with no questions yields an empty, successful result.
func (s *Service) QuestionsByCategory(ctx context.Context, categoryID int64) ([]Question, error) {
	if categoryID < 1 {
		return nil, Invalidf("category id must be a positive integer, got %d", categoryID)
	}
	questions, err := s.questions.ByCategory(ctx, categoryID)
	if err != nil {
		return nil, wrapStore(err, "filter questions by category")
	}
	return questions, nil
}

// Search returns every question whose text contains term, matched case
// insensitively. A blank term is a validation failure, never "match all".
func (s *Service) Search(ctx context.Context, term string) ([]Question, error) {
	if strings.TrimSpace(term) == "" {
		return nil, Invalidf("search term must not be empty")
	}
	questions, err := s.questions.Search(ctx, term)
	if err != nil {
		return nil, wrapStore(err, "search questions")
	}
	return questions, nil
}

// CreateParams carries the fields for a new question. CategoryID may be nil;
// Difficulty defaults to 0 upstream when the request omits it.
type CreateParams struct {
	Question   string
	Answer     string
	CategoryID *int64
	Difficulty int
}

// CreateQuestion validates params, persists the record, and returns it with
// its assigned identifier alongside the new total count.
func (s *Service) CreateQuestion(ctx context.Context, p CreateParams) (Question, int, error) {
	if strings.TrimSpace(p.Question) == "" {
		return Question{}, 0, Invalidf("question text is required")
	}
	if strings.TrimSpace(p.Answer) == "" {
		return Question{}, 0, Invalidf("answer text is required")
	}
	if p.Difficulty < DifficultyMin || p.Difficulty > DifficultyMax {
		return Question{}, 0, Invalidf("difficulty must be between %d and %d", DifficultyMin, DifficultyMax)
	}
	if p.CategoryID != nil {
		ok, err := s.categoryExists(ctx, *p.CategoryID)
		if err != nil {
			return Question{}, 0, err
		}
		if !ok {
			return Question{}, 0, Invalidf("category %d does not exist", *p.CategoryID)
		}
	}

	created, err := s.questions.Insert(ctx, Question{
		Question:   p.Question,
		Answer:     p.Answer,
		CategoryID: p.CategoryID,
		Difficulty: p.Difficulty,
	})
	if err != nil {
		return Question{}, 0, wrapStore(err, "insert question")
	}

	total, err := s.questions.Count(ctx)
	if err != nil {
		return Question{}, 0, wrapStore(err, "count questions")
	}
	return created, total, nil
}

// DeleteQuestion hard-deletes the record and returns the remaining count.
// Deleting an id that is already gone is NotFound, distinct from a generic
// failure, so clients can tell "already deleted" from "could not delete".
func (s *Service) DeleteQuestion(ctx context.Context, id int64) (int, error) {
	deleted, err := s.questions.Delete(ctx, id)
	if err != nil {
		return 0, wrapStore(err, "delete question")
	}
	if !deleted {
		return 0, NotFoundf("question %d not found", id)
	}
	remaining, err := s.questions.Count(ctx)
	if err != nil {
		return 0, wrapStore(err, "count questions")
	}
	return remaining, nil
}

// DrawParams is the caller-owned quiz round state passed on every draw.
type DrawParams struct {
	// CategoryID scopes the pool; AllCategories (0) means every category.
	// nil means the request carried no selector at all.
	CategoryID *int64
	// Previous holds identifiers already served this round.
	Previous []int64
}

// DrawResult is the tagged outcome of a draw: either a question or the
// exhausted terminal state.
type DrawResult struct {
	Question  *Question
	Exhausted bool
}

// DrawQuestion picks an unseen question from the selected pool. An empty
// candidate set yields Exhausted, a normal terminal outcome.
func (s *Service) DrawQuestion(ctx context.Context, p DrawParams) (DrawResult, error) {
	if p.CategoryID == nil {
		return DrawResult{}, Invalidf("quiz category selector is required")
	}
	if *p.CategoryID < 0 {
		return DrawResult{}, Invalidf("category id must be %d (all) or a positive integer", AllCategories)
	}

	var (
		pool []Question
		err  error
	)
	if *p.CategoryID == AllCategories {
		pool, err = s.questions.All(ctx)
	} else {
		pool, err = s.questions.ByCategory(ctx, *p.CategoryID)
	}
	if err != nil {
		return DrawResult{}, wrapStore(err, "load quiz pool")
	}

	next, ok := s.selector.Next(pool, p.Previous)
	if !ok {
		return DrawResult{Exhausted: true}, nil
	}
	return DrawResult{Question: &next}, nil
}

// FindQuestion looks up one question by id.
func (s *Service) FindQuestion(ctx context.Context, id int64) (Question, error) {
	q, found, err := s.questions.ByID(ctx, id)
	if err != nil {
		return Question{}, wrapStore(err, "find question")
	}
	if !found {
		return Question{}, NotFoundf("question %d not found", id)
	}
	return q, nil
}

func (s *Service) categoryExists(ctx context.Context, id int64) (bool, error) {
	if id < 1 {
		return false, nil
	}
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return false, err
	}
	_, ok := categories[id]
	return ok, nil
}
