package trivia

// AllCategories is the sentinel selector meaning a quiz draws from every category.
const AllCategories int64 = 0

// Difficulty bounds for question ratings.
const (
	DifficultyMin = 0
	DifficultyMax = 5
)

// Question is a single trivia record. The identifier is assigned on insert and
// never changes afterwards.
type Question struct {
	ID         int64  `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	CategoryID *int64 `json:"category"`
	Difficulty int    `json:"difficulty"`
}

// Category labels a group of questions.
type Category struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}
