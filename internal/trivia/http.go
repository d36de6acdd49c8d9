package trivia

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/trivia-api/pkg/http/errors"
)

// HTTPHandlers provides the REST endpoints for the trivia surface.
type HTTPHandlers struct {
	svc    *Service
	logger zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers backed by the query service.
func NewHTTPHandlers(svc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		svc:    svc,
		logger: logger.With().Str("component", "trivia_http").Logger(),
	}
}

// Register wires the trivia routes onto mux.
func (h *HTTPHandlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /categories", h.ListCategories)
	mux.HandleFunc("GET /categories/{id}/questions", h.QuestionsByCategory)
	mux.HandleFunc("GET /questions", h.ListQuestions)
	mux.HandleFunc("POST /questions", h.CreateQuestion)
	mux.HandleFunc("DELETE /questions/{id}", h.DeleteQuestion)
	mux.HandleFunc("POST /questions/search", h.SearchQuestions)
	mux.HandleFunc("POST /quizzes", h.DrawQuizQuestion)
}

// ListCategories handles GET /categories.
func (h *HTTPHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	labels := make(map[string]string, len(categories))
	for id, label := range categories {
		labels[strconv.FormatInt(id, 10)] = label
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"categories": labels,
	})
}

// ListQuestions handles GET /questions?page=N. A missing or malformed page
// falls back to page 1, matching the browsing surface's behavior.
func (h *HTTPHandlers) ListQuestions(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	result, err := h.svc.ListQuestions(r.Context(), page)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"questions":      questionList(result.Questions),
		"numOfQuestions": result.Total,
		"categories":     result.CategoryCount,
	})
}

// QuestionsByCategory handles GET /categories/{id}/questions.
func (h *HTTPHandlers) QuestionsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "category id must be an integer")
		return
	}

	questions, err := h.svc.QuestionsByCategory(r.Context(), categoryID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"category":       categoryID,
		"questions":      questionList(questions),
		"numOfQuestions": len(questions),
	})
}

type createQuestionRequest struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty *int   `json:"difficulty"`
	Category   *int64 `json:"category"`
}

// CreateQuestion handles POST /questions.
func (h *HTTPHandlers) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req createQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON payload")
		return
	}

	params := CreateParams{
		Question:   req.Question,
		Answer:     req.Answer,
		CategoryID: req.Category,
	}
	if req.Difficulty != nil {
		params.Difficulty = *req.Difficulty
	}

	created, total, err := h.svc.CreateQuestion(r.Context(), params)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]any{
		"success":        true,
		"question":       created,
		"numOfQuestions": total,
	})
}

// DeleteQuestion handles DELETE /questions/{id}.
func (h *HTTPHandlers) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "question id must be an integer")
		return
	}

	remaining, err := h.svc.DeleteQuestion(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"question_id":    id,
		"numOfQuestions": remaining,
	})
}

type searchRequest struct {
	// A pointer so an absent term is distinguishable from an empty one: the
	// former is NotFound, the latter a validation failure.
	SearchTerm *string `json:"searchTerm"`
}

// SearchQuestions handles POST /questions/search.
func (h *HTTPHandlers) SearchQuestions(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON payload")
		return
	}
	if req.SearchTerm == nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "searchTerm is missing from the request")
		return
	}

	questions, err := h.svc.Search(r.Context(), *req.SearchTerm)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"questions":       questionList(questions),
		"total_questions": len(questions),
	})
}

type quizRequest struct {
	PreviousQuestions []int64 `json:"previous_questions"`
	QuizCategory      *struct {
		ID int64 `json:"id"`
	} `json:"quiz_category"`
}

// DrawQuizQuestion handles POST /quizzes. Category id 0 draws from every
// category; an exhausted pool is a successful terminal response.
func (h *HTTPHandlers) DrawQuizQuestion(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "invalid JSON payload")
		return
	}

	params := DrawParams{Previous: req.PreviousQuestions}
	if req.QuizCategory != nil {
		params.CategoryID = &req.QuizCategory.ID
	}

	result, err := h.svc.DrawQuestion(r.Context(), params)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	if result.Exhausted {
		h.respondJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"question":  nil,
			"exhausted": true,
		})
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"question": result.Question,
	})
}

func (h *HTTPHandlers) respondServiceError(w http.ResponseWriter, err error) {
	var serr *Error
	if errors.As(err, &serr) {
		switch serr.Kind {
		case KindNotFound:
			httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, serr.Message)
		case KindValidation:
			httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, serr.Message)
		case KindUnprocessable:
			httperrors.RespondUnprocessable(w, httperrors.ErrCodeUnprocessable, serr.Message)
		default:
			httperrors.RespondInternalError(w, serr.Message)
		}
		return
	}
	h.logger.Error().Err(err).Msg("unclassified service error")
	httperrors.RespondInternalError(w, "internal error")
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("response encode failed")
	}
}

// questionList keeps empty results as [] rather than null in JSON.
func questionList(questions []Question) []Question {
	if questions == nil {
		return []Question{}
	}
	return questions
}
