package trivia

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storedQuestion mirrors the legacy persistence shape: the category reference
// is raw text, possibly padded, exactly as the real store may hold it.
type storedQuestion struct {
	id         int64
	question   string
	answer     string
	category   *string
	difficulty int
}

type fakeQuestionStore struct {
	nextID   int64
	rows     []storedQuestion
	failWith error
}

func (s *fakeQuestionStore) seed(question, answer, rawCategory string, difficulty int) int64 {
	s.nextID++
	var cat *string
	if rawCategory != "" {
		cat = &rawCategory
	}
	s.rows = append(s.rows, storedQuestion{
		id:         s.nextID,
		question:   question,
		answer:     answer,
		category:   cat,
		difficulty: difficulty,
	})
	return s.nextID
}

func (s *fakeQuestionStore) toDomain(row storedQuestion) Question {
	q := Question{
		ID:         row.id,
		Question:   row.question,
		Answer:     row.answer,
		Difficulty: row.difficulty,
	}
	if row.category != nil {
		if id, err := strconv.ParseInt(strings.TrimSpace(*row.category), 10, 64); err == nil && id > 0 {
			q.CategoryID = &id
		}
	}
	return q
}

func (s *fakeQuestionStore) All(context.Context) ([]Question, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	questions := make([]Question, 0, len(s.rows))
	for _, row := range s.rows {
		questions = append(questions, s.toDomain(row))
	}
	return questions, nil
}

func (s *fakeQuestionStore) ByID(_ context.Context, id int64) (Question, bool, error) {
	if s.failWith != nil {
		return Question{}, false, s.failWith
	}
	for _, row := range s.rows {
		if row.id == id {
			return s.toDomain(row), true, nil
		}
	}
	return Question{}, false, nil
}

func (s *fakeQuestionStore) ByCategory(_ context.Context, categoryID int64) ([]Question, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	var questions []Question
	for _, row := range s.rows {
		q := s.toDomain(row)
		if q.CategoryID != nil && *q.CategoryID == categoryID {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

func (s *fakeQuestionStore) Search(_ context.Context, term string) ([]Question, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	var questions []Question
	needle := strings.ToLower(term)
	for _, row := range s.rows {
		if strings.Contains(strings.ToLower(row.question), needle) {
			questions = append(questions, s.toDomain(row))
		}
	}
	return questions, nil
}

func (s *fakeQuestionStore) Insert(_ context.Context, q Question) (Question, error) {
	if s.failWith != nil {
		return Question{}, s.failWith
	}
	raw := ""
	if q.CategoryID != nil {
		raw = strconv.FormatInt(*q.CategoryID, 10)
	}
	id := s.seed(q.Question, q.Answer, raw, q.Difficulty)
	q.ID = id
	return q, nil
}

func (s *fakeQuestionStore) Delete(_ context.Context, id int64) (bool, error) {
	if s.failWith != nil {
		return false, s.failWith
	}
	for i, row := range s.rows {
		if row.id == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeQuestionStore) Count(context.Context) (int, error) {
	if s.failWith != nil {
		return 0, s.failWith
	}
	return len(s.rows), nil
}

type fakeCategoryStore struct {
	categories []Category
	allCalls   int
	failWith   error
}

func (s *fakeCategoryStore) All(context.Context) ([]Category, error) {
	s.allCalls++
	if s.failWith != nil {
		return nil, s.failWith
	}
	return s.categories, nil
}

func (s *fakeCategoryStore) Count(context.Context) (int, error) {
	if s.failWith != nil {
		return 0, s.failWith
	}
	return len(s.categories), nil
}

type memoryCategoryCache struct {
	data   map[int64]string
	getErr error
	sets   int
}

func (c *memoryCategoryCache) Get(context.Context) (map[int64]string, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.data, nil
}

func (c *memoryCategoryCache) Set(_ context.Context, categories map[int64]string) error {
	c.data = categories
	c.sets++
	return nil
}

func defaultCategories() *fakeCategoryStore {
	return &fakeCategoryStore{categories: []Category{
		{ID: 1, Type: "Science"},
		{ID: 2, Type: "Art"},
		{ID: 3, Type: "Geography"},
	}}
}

func newTestService(questions *fakeQuestionStore, categories *fakeCategoryStore, opts ServiceOptions) *Service {
	return NewService(questions, categories, opts, zerolog.Nop())
}

func TestListQuestionsPaginates(t *testing.T) {
	store := &fakeQuestionStore{}
	for i := 0; i < 25; i++ {
		store.seed(fmt.Sprintf("Question %d?", i), "Answer", "1", 1)
	}
	svc := newTestService(store, defaultCategories(), ServiceOptions{})

	page1, err := svc.ListQuestions(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, page1.Questions, 10)
	assert.Equal(t, 25, page1.Total)
	assert.Equal(t, 3, page1.CategoryCount)
	assert.Equal(t, int64(1), page1.Questions[0].ID)

	page3, err := svc.ListQuestions(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, page3.Questions, 5)
	assert.Equal(t, int64(21), page3.Questions[0].ID)
}

func TestListQuestionsPastLastPageIsNotFound(t *testing.T) {
	store := &fakeQuestionStore{}
	for i := 0; i < 5; i++ {
		store.seed("Q?", "A", "", 0)
	}
	svc := newTestService(store, defaultCategories(), ServiceOptions{})

	_, err := svc.ListQuestions(context.Background(), 2)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestListQuestionsEmptyStoreFirstPageSucceeds(t *testing.T) {
	svc := newTestService(&fakeQuestionStore{}, defaultCategories(), ServiceOptions{})

	page, err := svc.ListQuestions(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, page.Questions)
	assert.Zero(t, page.Total)
}

func TestListCategoriesPrefersCache(t *testing.T) {
	categories := defaultCategories()
	cache := &memoryCategoryCache{}
	svc := newTestService(&fakeQuestionStore{}, categories, ServiceOptions{Cache: cache})

	first, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Art", first[2])
	assert.Equal(t, 1, categories.allCalls)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, categories.allCalls, "second read should hit the cache")
}

func TestListCategoriesSurvivesCacheFailure(t *testing.T) {
	categories := defaultCategories()
	cache := &memoryCategoryCache{getErr: errors.New("redis down")}
	svc := newTestService(&fakeQuestionStore{}, categories, ServiceOptions{Cache: cache})

	lookup, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, lookup, 3)
}

func TestQuestionsByCategoryNormalizesReference(t *testing.T) {
	store := &fakeQuestionStore{}
	store.seed("Plain text reference?", "yes", "3", 1)
	store.seed("Padded text reference?", "also yes", " 3 ", 2)
	store.seed("Different category?", "no", "2", 1)
	store.seed("No category at all?", "no", "", 1)
	svc := newTestService(store, defaultCategories(), ServiceOptions{})

	questions, err := svc.QuestionsByCategory(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "Plain text reference?", questions[0].Question)
	assert.Equal(t, "Padded text reference?", questions[1].Question)
}

func TestQuestionsByCategoryEmptyResultIsSuccess(t *testing.T) {
	svc := newTestService(&fakeQuestionStore{}, defaultCategories(), ServiceOptions{})

	questions, err := svc.QuestionsByCategory(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, questions)
}

func TestQuestionsByCategoryRejectsNonPositiveID(t *testing.T) {
	svc := newTestService(&fakeQuestionStore{}, defaultCategories(), ServiceOptions{})

	for _, id := range []int64{0, -7} {
		_, err := svc.QuestionsByCategory(context.Background(), id)
		assert.Equal(t, KindValidation, KindOf(err), "id %d", id)
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	store := &fakeQuestionStore{}
	store.seed("What is the title of the book?", "Unknown", "2", 1)
	store.seed("Unrelated question?", "n/a", "2", 1)
	svc := newTestService(store, defaultCategories(), ServiceOptions{})

	upper, err := svc.Search(context.Background(), "TITLE")
	require.NoError(t, err)
	lower, err := svc.Search(context.Background(), "title")
	require.NoError(t, err)

	assert.Equal(t, upper, lower)
	require.Len(t, upper, 1)
	assert.Equal(t, int64(1), upper[0].ID)
}

func TestSearchRejectsBlankTerm(t *testing.T) {
	svc := newTestService(&fakeQuestionStore{}, defaultCategories(), ServiceOptions{})

	for _, term := range []string{"", "   "} {
		_, err := svc.Search(context.Background(), term)
		assert.Equal(t, KindValidation, KindOf(err), "term %q", term)
	}
}

func TestCreateQuestionValidation(t *testing.T) {
	tests := []struct {
		name   string
		params CreateParams
	}{
		{name: "missing question", params: CreateParams{Answer: "A", Difficulty: 1}},
		{name: "missing answer", params: CreateParams{Question: "Q?", Difficulty: 1}},
		{name: "blank question", params: CreateParams{Question: "  ", Answer: "A"}},
		{name: "difficulty above bound", params: CreateParams{Question: "Q?", Answer: "A", Difficulty: 6}},
		{name: "negative difficulty", params: CreateParams{Question: "Q?", Answer: "A", Difficulty: -1}},
		{name: "unknown category", params: CreateParams{Question: "Q?", Answer: "A", CategoryID: int64Ptr(42)}},
	}

	svc := newTestService(&fakeQuestionStore{}, defaultCategories(), ServiceOptions{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.CreateQuestion(context.Background(), tt.params)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestCreateQuestionAssignsIDAndIsRetrievable(t *testing.T) {
	store := &fakeQuestionStore{}
	svc := newTestService(store, defaultCategories(), ServiceOptions{})

	created, total, err := svc.CreateQuestion(context.Background(), CreateParams{
		Question:   "What is the capital of France?",
		Answer:     "Paris",
		CategoryID: int64Ptr(3),
		Difficulty: 1,
	})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, 1, total)

	found, err := svc.FindQuestion(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)
	require.NotNil(t, found.CategoryID)
	assert.Equal(t, int64(3), *found.CategoryID)
}

func TestCreateQuestionAllowsNilCategory(t *testing.T) {
	svc := newTestService(&fakeQuestionStore{}, defaultCategories(), ServiceOptions{})

	created, _, err := svc.CreateQuestion(context.Background(), CreateParams{Question: "Q?", Answer: "A"})
	require.NoError(t, err)
	assert.Nil(t, created.CategoryID)
}

func TestDeleteQuestionTwiceDistinguishesNotFound(t *testing.T) {
	store := &fakeQuestionStore{}
	id := store.seed("Q?", "A", "1", 1)
	store.seed("Other?", "B", "1", 1)
	svc := newTestService(store, defaultCategories(), ServiceOptions{})

	remaining, err := svc.DeleteQuestion(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	_, err = svc.DeleteQuestion(context.Background(), id)
	assert.Equal(t, KindNotFound, KindOf(err), "second delete must be NotFound, not a generic failure")
}

func TestDrawQuestionRequiresCategorySelector(t *testing.T) {
	svc := newTestService(&fakeQuestionStore{}, defaultCategories(), ServiceOptions{})

	_, err := svc.DrawQuestion(context.Background(), DrawParams{})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.DrawQuestion(context.Background(), DrawParams{CategoryID: int64Ptr(-1)})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestDrawQuestionScopesPoolToCategory(t *testing.T) {
	store := &fakeQuestionStore{}
	store.seed("Science one?", "A", "1", 1)
	store.seed("Art one?", "B", "2", 1)
	store.seed("Art two?", "C", "2", 1)
	svc := newTestService(store, defaultCategories(), ServiceOptions{})

	for i := 0; i < 50; i++ {
		result, err := svc.DrawQuestion(context.Background(), DrawParams{CategoryID: int64Ptr(2)})
		require.NoError(t, err)
		require.NotNil(t, result.Question)
		require.NotNil(t, result.Question.CategoryID)
		assert.Equal(t, int64(2), *result.Question.CategoryID)
	}
}

func TestDrawQuestionAllCategoriesUsesFullPool(t *testing.T) {
	store := &fakeQuestionStore{}
	store.seed("Science one?", "A", "1", 1)
	store.seed("Art one?", "B", "2", 1)
	svc := newTestService(store, defaultCategories(), ServiceOptions{})

	drawn := map[int64]bool{}
	for i := 0; i < 100; i++ {
		result, err := svc.DrawQuestion(context.Background(), DrawParams{CategoryID: int64Ptr(AllCategories)})
		require.NoError(t, err)
		require.NotNil(t, result.Question)
		drawn[result.Question.ID] = true
	}
	assert.Len(t, drawn, 2, "both categories should be reachable with the all-categories selector")
}

func TestDrawQuestionExhaustion(t *testing.T) {
	store := &fakeQuestionStore{}
	a := store.seed("One?", "A", "1", 1)
	b := store.seed("Two?", "B", "1", 1)
	c := store.seed("Three?", "C", "1", 1)
	svc := newTestService(store, defaultCategories(), ServiceOptions{})

	result, err := svc.DrawQuestion(context.Background(), DrawParams{
		CategoryID: int64Ptr(AllCategories),
		Previous:   []int64{a, b, c},
	})
	require.NoError(t, err)
	assert.True(t, result.Exhausted)
	assert.Nil(t, result.Question)
}

func TestStoreFailuresSurfaceAsUnprocessable(t *testing.T) {
	store := &fakeQuestionStore{failWith: errors.New("connection reset")}
	svc := newTestService(store, defaultCategories(), ServiceOptions{})

	_, err := svc.ListQuestions(context.Background(), 1)
	assert.Equal(t, KindUnprocessable, KindOf(err))

	_, err = svc.Search(context.Background(), "title")
	assert.Equal(t, KindUnprocessable, KindOf(err))

	_, err = svc.DeleteQuestion(context.Background(), 1)
	assert.Equal(t, KindUnprocessable, KindOf(err))
}

func int64Ptr(v int64) *int64 { return &v }
