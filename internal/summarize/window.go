package summarize

import (
	"context"
	"sort"
	"strings"

	"github.com/lectio/lectio/internal/genai"
	"github.com/lectio/lectio/internal/models"
)

// Span is a half-open range [Start, End) of page positions within the
// summarized page sequence.
type Span struct {
	Start int
	End   int
}

// PlanWindows computes the merge plan for n pages and a requested
// window size. The size is clamped to [1, n]; each page position is an
// anchor whose window spans left = size/2 positions before it and
// right = size-left-1 after it (the anchor sits left-of-center for
// even sizes). Clamping at the sequence boundary makes neighboring
// anchors collapse onto the same span, so spans are deduplicated and
// each distinct range is merged exactly once. The plan is sorted by
// Start.
func PlanWindows(n, size int) []Span {
	if n <= 0 {
		return nil
	}
	if size < 1 {
		size = 1
	}
	if size > n {
		size = n
	}
	left := size / 2
	right := size - left - 1

	seen := make(map[Span]struct{})
	var plan []Span
	for idx := 0; idx < n; idx++ {
		span := Span{Start: max(0, idx-left), End: min(n, idx+right+1)}
		if span.End-span.Start <= 0 {
			continue
		}
		if _, ok := seen[span]; ok {
			continue
		}
		seen[span] = struct{}{}
		plan = append(plan, span)
	}
	sort.SliceStable(plan, func(i, j int) bool { return plan[i].Start < plan[j].Start })
	return plan
}

// Merger executes a window plan: one remote call per span, merging the
// per-page summaries of that span into a Markdown section.
type Merger struct {
	client genai.Client
}

// NewMerger creates a merger backed by the given client.
func NewMerger(client genai.Client) *Merger {
	return &Merger{client: client}
}

// MergeWindows plans and executes the window merge for the summarized
// pages. Calls are issued sequentially in increasing-start order; any
// remote failure aborts the whole merge so callers never persist a
// partial note. The returned windows are sorted by StartPage.
func (m *Merger) MergeWindows(ctx context.Context, pages []models.SummarizedPage, size int) ([]models.Window, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	plan := PlanWindows(len(pages), size)
	windows := make([]models.Window, 0, len(plan))
	for _, span := range plan {
		block := pages[span.Start:span.End]
		markdown, err := m.client.Generate(ctx, windowPrompt(block))
		if err != nil {
			return nil, err
		}
		indexes := make([]int, 0, len(block))
		for _, p := range block {
			indexes = append(indexes, p.Index)
		}
		windows = append(windows, models.Window{
			StartPage:   block[0].Index,
			EndPage:     block[len(block)-1].Index,
			PageIndexes: indexes,
			Markdown:    strings.TrimSpace(markdown),
		})
	}

	sort.SliceStable(windows, func(i, j int) bool { return windows[i].StartPage < windows[j].StartPage })
	return windows, nil
}

// JoinMarkdown concatenates the non-empty window sections in order,
// separated by blank lines. This is the final note Markdown.
func JoinMarkdown(windows []models.Window) string {
	parts := make([]string, 0, len(windows))
	for _, w := range windows {
		if md := strings.TrimSpace(w.Markdown); md != "" {
			parts = append(parts, md)
		}
	}
	return strings.Join(parts, "\n\n")
}
