package summarize

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lectio/lectio/internal/models"
)

// fakeClient replies with a canned string per call and records prompts.
type fakeClient struct {
	replies []string
	calls   int
	err     error
}

func (f *fakeClient) Generate(_ context.Context, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	reply := "merged"
	if f.calls < len(f.replies) {
		reply = f.replies[f.calls]
	}
	f.calls++
	return reply, nil
}

func TestPlanWindows_CoversEveryPage(t *testing.T) {
	for n := 1; n <= 12; n++ {
		for size := 1; size <= 9; size++ {
			plan := PlanWindows(n, size)
			covered := make([]bool, n)
			for _, span := range plan {
				if span.End <= span.Start {
					t.Fatalf("n=%d size=%d: empty span %+v", n, size, span)
				}
				for i := span.Start; i < span.End; i++ {
					covered[i] = true
				}
			}
			for i, ok := range covered {
				if !ok {
					t.Fatalf("n=%d size=%d: page position %d not covered", n, size, i)
				}
			}
		}
	}
}

func TestPlanWindows_FullWindowCollapsesToOne(t *testing.T) {
	plan := PlanWindows(5, 5)
	if len(plan) != 1 {
		t.Fatalf("len = %d, want 1 (%+v)", len(plan), plan)
	}
	if plan[0] != (Span{Start: 0, End: 5}) {
		t.Errorf("span = %+v, want [0,5)", plan[0])
	}
}

func TestPlanWindows_OversizedClampsToPageCount(t *testing.T) {
	plan := PlanWindows(3, 7)
	if len(plan) != 1 || plan[0] != (Span{Start: 0, End: 3}) {
		t.Errorf("plan = %+v, want single [0,3)", plan)
	}
}

func TestPlanWindows_SizeThreeExample(t *testing.T) {
	// n=6, w=3: left=1, right=1.
	want := []Span{{0, 2}, {0, 3}, {1, 4}, {2, 5}, {3, 6}, {4, 6}}
	plan := PlanWindows(6, 3)
	if len(plan) != len(want) {
		t.Fatalf("plan = %+v, want %+v", plan, want)
	}
	for i := range want {
		if plan[i] != want[i] {
			t.Errorf("plan[%d] = %+v, want %+v", i, plan[i], want[i])
		}
	}
}

func TestPlanWindows_SortedAndDeduplicated(t *testing.T) {
	for n := 1; n <= 10; n++ {
		for size := 1; size <= 8; size++ {
			plan := PlanWindows(n, size)
			seen := make(map[Span]bool)
			for i, span := range plan {
				if seen[span] {
					t.Fatalf("n=%d size=%d: duplicate span %+v", n, size, span)
				}
				seen[span] = true
				if i > 0 && plan[i-1].Start > span.Start {
					t.Fatalf("n=%d size=%d: starts not non-decreasing: %+v", n, size, plan)
				}
			}
			if len(plan) > n {
				t.Fatalf("n=%d size=%d: plan larger than page count", n, size)
			}
		}
	}
}

func TestPlanWindows_SizeOneIsPerPage(t *testing.T) {
	plan := PlanWindows(4, 1)
	if len(plan) != 4 {
		t.Fatalf("len = %d, want 4", len(plan))
	}
	for i, span := range plan {
		if span.Start != i || span.End != i+1 {
			t.Errorf("plan[%d] = %+v", i, span)
		}
	}
}

func testPages(n int) []models.SummarizedPage {
	pages := make([]models.SummarizedPage, 0, n)
	for i := 1; i <= n; i++ {
		pages = append(pages, models.SummarizedPage{
			Index: i,
			Label: fmt.Sprintf("Page %d", i),
			Text:  fmt.Sprintf("text %d", i),
			Summary: models.PageSummary{
				Outline:       fmt.Sprintf("outline %d", i),
				KeyPoints:     []string{"a", "b"},
				StudyQuestion: "why?",
			},
		})
	}
	return pages
}

func TestMergeWindows_OneCallPerDistinctSpan(t *testing.T) {
	client := &fakeClient{}
	m := NewMerger(client)
	windows, err := m.MergeWindows(context.Background(), testPages(5), 5)
	if err != nil {
		t.Fatal(err)
	}
	if client.calls != 1 {
		t.Errorf("calls = %d, want 1", client.calls)
	}
	if len(windows) != 1 {
		t.Fatalf("windows = %d, want 1", len(windows))
	}
	w := windows[0]
	if w.StartPage != 1 || w.EndPage != 5 {
		t.Errorf("range = [%d,%d], want [1,5]", w.StartPage, w.EndPage)
	}
	if len(w.PageIndexes) != 5 || w.PageIndexes[0] != 1 || w.PageIndexes[4] != 5 {
		t.Errorf("pageIndexes = %v", w.PageIndexes)
	}
}

func TestMergeWindows_SortedByStartPage(t *testing.T) {
	client := &fakeClient{}
	m := NewMerger(client)
	windows, err := m.MergeWindows(context.Background(), testPages(6), 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(windows); i++ {
		if windows[i-1].StartPage > windows[i].StartPage {
			t.Fatalf("windows not sorted by startPage: %+v", windows)
		}
	}
}

func TestMergeWindows_RemoteFailureAborts(t *testing.T) {
	client := &fakeClient{err: errors.New("service down")}
	m := NewMerger(client)
	windows, err := m.MergeWindows(context.Background(), testPages(4), 3)
	if err == nil {
		t.Fatal("expected error")
	}
	if windows != nil {
		t.Errorf("windows = %+v, want nil on failure", windows)
	}
}

func TestJoinMarkdown_SkipsEmptyWindows(t *testing.T) {
	got := JoinMarkdown([]models.Window{
		{Markdown: "### Pages 1-2\n- a"},
		{Markdown: "   "},
		{Markdown: "### Pages 2-4\n- b"},
	})
	want := "### Pages 1-2\n- a\n\n### Pages 2-4\n- b"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
