package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/lectio/lectio/internal/models"
)

// Request bounds. Validation runs after defaults are applied, so a zero
// NumQuestions or WindowSize never reaches the pipeline.
const (
	minSourceTextLen  = 50
	maxQuestions      = 20
	defaultQuestions  = 5
	maxDifficultyLen  = 32
	defaultDifficulty = "normal"
	minFileIDLen      = 8
	maxWindowSize     = 7
	defaultWindowSize = 3
)

// GenerateQuizRequest is the body for POST /generate-quiz.
type GenerateQuizRequest struct {
	SourceText   string `json:"sourceText"`
	NumQuestions int    `json:"numQuestions"`
	Difficulty   string `json:"difficulty"`
}

func (r *GenerateQuizRequest) applyDefaults() {
	if r.NumQuestions == 0 {
		r.NumQuestions = defaultQuestions
	}
	if r.Difficulty == "" {
		r.Difficulty = defaultDifficulty
	}
}

// Validate implements request validation; call applyDefaults first.
func (r GenerateQuizRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SourceText, validation.Required, validation.RuneLength(minSourceTextLen, 0)),
		validation.Field(&r.NumQuestions, validation.Min(1), validation.Max(maxQuestions)),
		validation.Field(&r.Difficulty, validation.RuneLength(0, maxDifficultyLen)),
	)
}

// GenerateQuizFromFileRequest is the body for POST /generate-quiz-from-file.
type GenerateQuizFromFileRequest struct {
	FileID       string `json:"fileId"`
	NumQuestions int    `json:"numQuestions"`
}

func (r *GenerateQuizFromFileRequest) applyDefaults() {
	if r.NumQuestions == 0 {
		r.NumQuestions = defaultQuestions
	}
}

func (r GenerateQuizFromFileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FileID, validation.Required, validation.RuneLength(minFileIDLen, 0)),
		validation.Field(&r.NumQuestions, validation.Min(1), validation.Max(maxQuestions)),
	)
}

// GenerateLearningNoteRequest is the body for POST /generate-learning-note.
type GenerateLearningNoteRequest struct {
	FileID     string `json:"fileId"`
	WindowSize int    `json:"windowSize"`
	Force      bool   `json:"force"`
}

func (r *GenerateLearningNoteRequest) applyDefaults() {
	if r.WindowSize == 0 {
		r.WindowSize = defaultWindowSize
	}
}

func (r GenerateLearningNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FileID, validation.Required, validation.RuneLength(minFileIDLen, 0)),
		validation.Field(&r.WindowSize, validation.Min(1), validation.Max(maxWindowSize)),
	)
}

// UploadResponse is returned after a successful document upload.
type UploadResponse struct {
	FileID string `json:"fileId"`
}

// QuizListResponse wraps paginated quiz listings.
type QuizListResponse struct {
	Quizzes []models.Quiz `json:"quizzes"`
	Total   int           `json:"total"`
}
