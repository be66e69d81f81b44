// Package service coordinates extraction, summarization, quiz assembly
// and persistence behind the HTTP and MCP surfaces.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/lectio/lectio/internal/apperr"
	"github.com/lectio/lectio/internal/extract"
	"github.com/lectio/lectio/internal/genai"
	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/notestore"
	"github.com/lectio/lectio/internal/quiz"
	"github.com/lectio/lectio/internal/quizstore"
	"github.com/lectio/lectio/internal/summarize"
	"github.com/lectio/lectio/internal/textutil"
	"github.com/lectio/lectio/internal/uploads"
)

// Limits bounds how much source text reaches the model and the store.
type Limits struct {
	MaxSourceChars     int
	MaxPagePromptChars int
	MaxPageTextChars   int
}

// DefaultLimits returns the stock limits.
func DefaultLimits() Limits {
	return Limits{
		MaxSourceChars:     8000,
		MaxPagePromptChars: 3500,
		MaxPageTextChars:   6000,
	}
}

// minSourceChars is the floor for normalized quiz source text. Anything
// shorter cannot yield meaningful questions.
const minSourceChars = 30

// Publisher receives lifecycle events for generated artifacts.
type Publisher interface {
	PublishNoteEvent(kind, fileID string)
	PublishQuizEvent(quizID int64)
}

type noopPublisher struct{}

func (noopPublisher) PublishNoteEvent(string, string) {}
func (noopPublisher) PublishQuizEvent(int64)          {}

// Deps wires the service's collaborators.
type Deps struct {
	Notes   *notestore.Store
	Quizzes *quizstore.DB
	Uploads *uploads.Dir
	Client  genai.Client
	Events  Publisher
	Limits  Limits
	Logger  *slog.Logger
}

// Service implements the learning-artifact operations.
type Service struct {
	notes   *notestore.Store
	quizzes *quizstore.DB
	uploads *uploads.Dir
	pages   *summarize.PageSummarizer
	merger  *summarize.Merger
	quiz    *quiz.Assembler
	events  Publisher
	limits  Limits
	logger  *slog.Logger
}

// New builds a Service. Events, Limits and Logger are optional.
func New(d Deps) *Service {
	if d.Events == nil {
		d.Events = noopPublisher{}
	}
	if d.Limits == (Limits{}) {
		d.Limits = DefaultLimits()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Service{
		notes:   d.Notes,
		quizzes: d.Quizzes,
		uploads: d.Uploads,
		pages:   summarize.NewPageSummarizer(d.Client),
		merger:  summarize.NewMerger(d.Client),
		quiz:    quiz.NewAssembler(d.Client),
		events:  d.Events,
		limits:  d.Limits,
		logger:  d.Logger,
	}
}

// UploadDocument stores an uploaded document and returns its file id.
// PDFs are validated before the id is handed out.
func (s *Service) UploadDocument(r io.Reader, originalName string) (string, error) {
	fileID, err := s.uploads.Save(r, originalName)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(fileID), ".pdf") {
		path, err := s.uploads.Resolve(fileID)
		if err != nil {
			return "", err
		}
		if _, err := extract.PDFPageCount(path); err != nil {
			return "", apperr.Invalid("uploaded file is not a readable PDF")
		}
	}
	s.logger.Info("document uploaded", "fileId", fileID)
	return fileID, nil
}

// GenerateQuizFromText builds and stores a quiz from freeform study text.
func (s *Service) GenerateQuizFromText(ctx context.Context, sourceText string, numQuestions int, difficulty string) (*models.Quiz, error) {
	source, err := s.prepareSource(sourceText)
	if err != nil {
		return nil, err
	}

	result, err := s.quiz.FromText(ctx, source, numQuestions, difficulty)
	if err != nil {
		return nil, err
	}

	record := &models.Quiz{
		CreatedAt:    time.Now().UTC(),
		SourceType:   models.QuizSourceText,
		Reference:    models.QuizReference{Hash: hashSource(source)},
		NumQuestions: len(result.Questions),
		Difficulty:   difficulty,
		Questions:    result.Questions,
		Notes:        result.Notes,
	}
	return s.storeQuiz(record)
}

// GenerateQuizFromFile builds and stores a quiz from an uploaded document.
func (s *Service) GenerateQuizFromFile(ctx context.Context, fileID string, numQuestions int) (*models.Quiz, error) {
	path, err := s.uploads.Resolve(fileID)
	if err != nil {
		return nil, err
	}
	text, err := extract.Text(path)
	if err != nil {
		return nil, err
	}
	// Unlike freeform text, a document only needs to be nonempty:
	// short decks are still worth a generation attempt.
	source := textutil.Clip(textutil.Normalize(text), s.limits.MaxSourceChars)
	if source == "" {
		return nil, apperr.Invalid("document has no extractable text")
	}

	result, err := s.quiz.FromDocument(ctx, source, numQuestions)
	if err != nil {
		return nil, err
	}

	record := &models.Quiz{
		CreatedAt:    time.Now().UTC(),
		SourceType:   models.QuizSourceFile,
		Reference:    models.QuizReference{FileID: fileID},
		NumQuestions: len(result.Questions),
		Questions:    result.Questions,
		Notes:        result.Notes,
	}
	return s.storeQuiz(record)
}

// GetQuiz returns one stored quiz.
func (s *Service) GetQuiz(_ context.Context, id int64) (*models.Quiz, error) {
	return s.quizzes.GetRecord(id)
}

// ListQuizzes returns stored quizzes, newest first, with the total count.
func (s *Service) ListQuizzes(_ context.Context, limit, offset int) ([]models.Quiz, int, error) {
	return s.quizzes.ListRecords(limit, offset)
}

// GenerateLearningNote produces the learning note for an uploaded file.
// An existing note is returned as-is unless force is set; regeneration
// overwrites the record wholesale but keeps its original CreatedAt.
func (s *Service) GenerateLearningNote(ctx context.Context, fileID string, windowSize int, force bool) (*models.LearningNote, error) {
	existing, err := s.notes.Read(fileID)
	if err == nil && !force {
		s.logger.Info("learning note cache hit", "fileId", fileID)
		return existing, nil
	}
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	path, err := s.uploads.Resolve(fileID)
	if err != nil {
		return nil, err
	}
	pages, err := extract.Pages(path)
	if err != nil {
		return nil, err
	}

	summarized, err := s.summarizePages(ctx, pages)
	if err != nil {
		return nil, err
	}
	if len(summarized) == 0 {
		return nil, apperr.Invalid("document has no extractable text")
	}

	windows, err := s.merger.MergeWindows(ctx, summarized, windowSize)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note := &models.LearningNote{
		FileID:     fileID,
		CreatedAt:  now,
		UpdatedAt:  now,
		PageCount:  len(summarized),
		WindowSize: windowSize,
		Pages:      summarized,
		Windows:    windows,
		Markdown:   summarize.JoinMarkdown(windows),
	}
	kind := "created"
	if existing != nil {
		note.CreatedAt = existing.CreatedAt
		kind = "updated"
	}

	if err := s.notes.Save(fileID, note); err != nil {
		return nil, err
	}
	s.events.PublishNoteEvent(kind, fileID)
	s.logger.Info("learning note generated",
		"fileId", fileID, "pages", note.PageCount, "windows", len(windows))
	return note, nil
}

// GetLearningNote returns the stored note for a file id.
func (s *Service) GetLearningNote(_ context.Context, fileID string) (*models.LearningNote, error) {
	return s.notes.Read(fileID)
}

func (s *Service) summarizePages(ctx context.Context, pages []models.Page) ([]models.SummarizedPage, error) {
	out := make([]models.SummarizedPage, 0, len(pages))
	for _, p := range pages {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		summary, err := s.pages.Summarize(ctx, p.Label, textutil.Clip(text, s.limits.MaxPagePromptChars))
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", p.Label, err)
		}
		out = append(out, models.SummarizedPage{
			Index:   p.Index,
			Label:   p.Label,
			Text:    textutil.Clip(text, s.limits.MaxPageTextChars),
			Summary: summary,
		})
	}
	return out, nil
}

// prepareSource normalizes and clips quiz source text, rejecting input
// too short to question.
func (s *Service) prepareSource(raw string) (string, error) {
	source := textutil.Normalize(raw)
	if len([]rune(source)) < minSourceChars {
		return "", apperr.Invalid("source text too short after normalization")
	}
	return textutil.Clip(source, s.limits.MaxSourceChars), nil
}

func (s *Service) storeQuiz(record *models.Quiz) (*models.Quiz, error) {
	stored, err := s.quizzes.AddRecord(record)
	if err != nil {
		return nil, err
	}
	s.events.PublishQuizEvent(stored.ID)
	s.logger.Info("quiz stored",
		"id", stored.ID, "sourceType", stored.SourceType, "questions", len(stored.Questions))
	return stored, nil
}

func hashSource(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
