// Package models defines the domain types for Lectio.
package models

import "time"

// Page is one extracted page (or slide) of a source document.
// Index is 1-based and contiguous; it is the sole ordering key.
type Page struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// PageSummary is the structured summary produced for a single page.
// Fields may be empty when the model response omits them, but the
// record itself always exists once a page has been summarized.
type PageSummary struct {
	Outline       string   `json:"outline"`
	KeyPoints     []string `json:"keyPoints"`
	StudyQuestion string   `json:"studyQuestion"`
}

// SummarizedPage is a Page whose text has been clipped for storage,
// paired with its summary.
type SummarizedPage struct {
	Index   int         `json:"index"`
	Label   string      `json:"label"`
	Text    string      `json:"text"`
	Summary PageSummary `json:"summary"`
}

// Window is a contiguous run of pages merged into one Markdown section.
// StartPage and EndPage are the first and last included page indexes.
type Window struct {
	StartPage   int    `json:"startPage"`
	EndPage     int    `json:"endPage"`
	PageIndexes []int  `json:"pageIndexes"`
	Markdown    string `json:"markdown"`
}

// LearningNote is the persisted artifact for one uploaded file: the
// per-page summaries plus the merged window Markdown. One record per
// FileID, overwritten wholesale on regeneration.
type LearningNote struct {
	FileID     string           `json:"fileId"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
	PageCount  int              `json:"pageCount"`
	WindowSize int              `json:"windowSize"`
	Pages      []SummarizedPage `json:"pages"`
	Windows    []Window         `json:"windows"`
	Markdown   string           `json:"markdown"`
}

// Question is a single four-option multiple-choice question.
// CorrectIndex is always within [0, 3].
type Question struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation"`
}

// Quiz source types.
const (
	QuizSourceText = "text"
	QuizSourceFile = "file"
)

// QuizReference points at the material a quiz was generated from:
// a content hash for raw text, or the file id for uploaded documents.
type QuizReference struct {
	Hash   string `json:"hash,omitempty"`
	FileID string `json:"fileId,omitempty"`
}

// Quiz is one generated quiz record. Records are append-only.
type Quiz struct {
	ID           int64         `json:"id"`
	CreatedAt    time.Time     `json:"createdAt"`
	SourceType   string        `json:"sourceType"`
	Reference    QuizReference `json:"reference"`
	NumQuestions int           `json:"numQuestions"`
	Difficulty   string        `json:"difficulty,omitempty"`
	Questions    []Question    `json:"questions"`
	Notes        []string      `json:"notes"`
}
