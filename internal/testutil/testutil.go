// Package testutil provides shared test helpers: temp stores, a
// scripted AI client and document builders.
package testutil

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lectio/lectio/internal/notestore"
	"github.com/lectio/lectio/internal/quizstore"
	"github.com/lectio/lectio/internal/uploads"
)

// ScriptedClient replays replies in call order; the last one repeats.
// FailAt (1-based) makes that and later calls return FailErr instead.
type ScriptedClient struct {
	mu      sync.Mutex
	replies []string
	failAt  int
	failErr error
	calls   int
	prompts []string
}

// NewScriptedClient builds a client that answers with the given replies.
func NewScriptedClient(replies ...string) *ScriptedClient {
	return &ScriptedClient{replies: replies}
}

// FailFrom makes call number n (1-based) and all later calls fail with err.
func (c *ScriptedClient) FailFrom(n int, err error) *ScriptedClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failAt = n
	c.failErr = err
	return c
}

// Reset replaces the script and clears the call counter.
func (c *ScriptedClient) Reset(replies ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = replies
	c.calls = 0
	c.prompts = nil
}

// Generate implements genai.Client.
func (c *ScriptedClient) Generate(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.prompts = append(c.prompts, prompt)
	if c.failAt != 0 && c.calls >= c.failAt {
		return "", c.failErr
	}
	i := c.calls - 1
	if i >= len(c.replies) {
		i = len(c.replies) - 1
	}
	return c.replies[i], nil
}

// Calls returns how many times Generate ran.
func (c *ScriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Prompts returns the prompts seen so far.
func (c *ScriptedClient) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// Stores bundles the three persistence roots under one temp directory.
type Stores struct {
	Notes   *notestore.Store
	Quizzes *quizstore.DB
	Uploads *uploads.Dir
}

// NewStores creates temp-backed stores that clean up with the test.
func NewStores(t *testing.T) *Stores {
	t.Helper()
	root := t.TempDir()

	notes, err := notestore.New(filepath.Join(root, "notes"))
	if err != nil {
		t.Fatal(err)
	}
	quizzes, err := quizstore.Open(filepath.Join(root, "quizzes.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { quizzes.Close() })
	dir, err := uploads.New(filepath.Join(root, "uploads"))
	if err != nil {
		t.Fatal(err)
	}
	return &Stores{Notes: notes, Quizzes: quizzes, Uploads: dir}
}

// WritePPTX builds a minimal OOXML deck with one slide per text and
// returns its path.
func WritePPTX(t *testing.T, slideTexts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deck.pptx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for i, text := range slideTexts {
		w, err := zw.Create(fmt.Sprintf("ppt/slides/slide%d.xml", i+1))
		if err != nil {
			t.Fatal(err)
		}
		body := `<?xml version="1.0"?><p:sld xmlns:p="urn:p" xmlns:a="urn:a"><a:r><a:t>` +
			text + `</a:t></a:r></p:sld>`
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}
