package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lectio/lectio/internal/apperr"
	"github.com/lectio/lectio/internal/service"
)

const maxUploadBytes = 50 << 20 // 50 MB

// Handler holds API route handlers.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// writeError maps domain errors to HTTP responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrBadResponse):
		slog.Error("unusable model response", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("model returned an unusable response"))
	case errors.Is(err, apperr.ErrRemote):
		slog.Error("model call failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("model request failed"))
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// Upload handles POST /api/upload (multipart/form-data, field "file").
//
//	@Summary		Upload a lecture document (PDF or PPTX)
//	@Tags			documents
//	@Accept			mpfd
//	@Produce		json
//	@Param			file	formData	file	true	"Document to upload"
//	@Success		201		{object}	UploadResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	fileID, err := h.svc.UploadDocument(file, header.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, UploadResponse{FileID: fileID})
}

// GenerateQuiz handles POST /api/generate-quiz.
//
//	@Summary		Generate a quiz from freeform study text
//	@Tags			quizzes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GenerateQuizRequest	true	"Source text and options"
//	@Success		201		{object}	models.Quiz
//	@Failure		400		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/generate-quiz [post]
func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req GenerateQuizRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.applyDefaults()
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	q, err := h.svc.GenerateQuizFromText(r.Context(), req.SourceText, req.NumQuestions, req.Difficulty)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// GenerateQuizFromFile handles POST /api/generate-quiz-from-file.
//
//	@Summary		Generate a quiz from an uploaded document
//	@Tags			quizzes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GenerateQuizFromFileRequest	true	"File id and options"
//	@Success		201		{object}	models.Quiz
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/generate-quiz-from-file [post]
func (h *Handler) GenerateQuizFromFile(w http.ResponseWriter, r *http.Request) {
	var req GenerateQuizFromFileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.applyDefaults()
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	q, err := h.svc.GenerateQuizFromFile(r.Context(), req.FileID, req.NumQuestions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// GenerateLearningNote handles POST /api/generate-learning-note.
//
//	@Summary		Generate (or return the cached) learning note for a document
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GenerateLearningNoteRequest	true	"File id and options"
//	@Success		200		{object}	models.LearningNote
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/generate-learning-note [post]
func (h *Handler) GenerateLearningNote(w http.ResponseWriter, r *http.Request) {
	var req GenerateLearningNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.applyDefaults()
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	note, err := h.svc.GenerateLearningNote(r.Context(), req.FileID, req.WindowSize, req.Force)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// GetLearningNote handles GET /api/learning-note/{fileID}.
//
//	@Summary		Fetch the stored learning note for a document
//	@Tags			notes
//	@Produce		json
//	@Param			fileID	path		string	true	"File id"
//	@Success		200		{object}	models.LearningNote
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/learning-note/{fileID} [get]
func (h *Handler) GetLearningNote(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")
	note, err := h.svc.GetLearningNote(r.Context(), fileID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// ListQuizzes handles GET /api/quizzes.
//
//	@Summary		List stored quizzes, newest first
//	@Tags			quizzes
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	QuizListResponse
//	@Security		BearerAuth
//	@Router			/quizzes [get]
func (h *Handler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	quizzes, total, err := h.svc.ListQuizzes(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, QuizListResponse{Quizzes: quizzes, Total: total})
}

// GetQuiz handles GET /api/quizzes/{id}.
//
//	@Summary		Fetch one stored quiz
//	@Tags			quizzes
//	@Produce		json
//	@Param			id	path		int	true	"Quiz id"
//	@Success		200	{object}	models.Quiz
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/quizzes/{id} [get]
func (h *Handler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid quiz id"))
		return
	}
	quiz, err := h.svc.GetQuiz(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}
