package notestore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lectio/lectio/internal/apperr"
	"github.com/lectio/lectio/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func sampleNote(fileID string) *models.LearningNote {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &models.LearningNote{
		FileID:     fileID,
		CreatedAt:  now,
		UpdatedAt:  now,
		PageCount:  2,
		WindowSize: 3,
		Pages: []models.SummarizedPage{
			{Index: 1, Label: "Page 1", Text: "t1", Summary: models.PageSummary{Outline: "o1"}},
			{Index: 2, Label: "Page 2", Text: "t2", Summary: models.PageSummary{Outline: "o2"}},
		},
		Windows:  []models.Window{{StartPage: 1, EndPage: 2, PageIndexes: []int{1, 2}, Markdown: "### Pages 1-2"}},
		Markdown: "### Pages 1-2",
	}
}

func TestSaveAndRead_RoundTrip(t *testing.T) {
	s := testStore(t)
	want := sampleNote("file-abc123")
	if err := s.Save("file-abc123", want); err != nil {
		t.Fatal(err)
	}
	got, err := s.Read("file-abc123")
	if err != nil {
		t.Fatal(err)
	}
	if got.FileID != want.FileID || got.PageCount != 2 || len(got.Windows) != 1 {
		t.Errorf("got %+v", got)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("createdAt = %v, want %v", got.CreatedAt, want.CreatedAt)
	}
}

func TestRead_MissingIsNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.Read("nope")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRead_CorruptDocumentCountsAsAbsent(t *testing.T) {
	s := testStore(t)
	path := filepath.Join(s.Root(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := s.Read("bad")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSave_IDCannotEscapeRoot(t *testing.T) {
	s := testStore(t)
	if err := s.Save("../../etc/evil", sampleNote("evil")); err != nil {
		t.Fatal(err)
	}
	// The document must land inside the store root under the base name.
	if _, err := os.Stat(filepath.Join(s.Root(), "evil.json")); err != nil {
		t.Errorf("expected document inside root: %v", err)
	}
}

func TestSave_OverwritesWholesale(t *testing.T) {
	s := testStore(t)
	first := sampleNote("f")
	if err := s.Save("f", first); err != nil {
		t.Fatal(err)
	}
	second := sampleNote("f")
	second.PageCount = 9
	second.Windows = nil
	if err := s.Save("f", second); err != nil {
		t.Fatal(err)
	}
	got, err := s.Read("f")
	if err != nil {
		t.Fatal(err)
	}
	if got.PageCount != 9 || len(got.Windows) != 0 {
		t.Errorf("got %+v, want second record verbatim", got)
	}
}

func TestSave_NoTempFilesLeftBehind(t *testing.T) {
	s := testStore(t)
	if err := s.Save("x", sampleNote("x")); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".lectio-tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSave_ConcurrentWritersDoNotTear(t *testing.T) {
	s := testStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			note := sampleNote("shared")
			note.PageCount = n
			if err := s.Save("shared", note); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
	got, err := s.Read("shared")
	if err != nil {
		t.Fatal(err)
	}
	// Whichever writer won, the document must be internally consistent.
	if got.FileID != "shared" || len(got.Pages) != 2 {
		t.Errorf("torn document: %+v", got)
	}
}

func TestDocumentID(t *testing.T) {
	cases := []struct {
		path string
		id   string
		ok   bool
	}{
		{"/data/notes/abc.json", "abc", true},
		{"/data/notes/.lectio-tmp-123", "", false},
		{"/data/notes/readme.txt", "", false},
	}
	for _, c := range cases {
		id, ok := documentID(c.path)
		if id != c.id || ok != c.ok {
			t.Errorf("documentID(%q) = (%q, %v), want (%q, %v)", c.path, id, ok, c.id, c.ok)
		}
	}
}
