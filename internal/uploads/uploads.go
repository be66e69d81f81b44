// Package uploads manages the uploaded-document directory and the file
// ids that key every downstream artifact.
package uploads

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lectio/lectio/internal/apperr"
)

// Extensions the extraction pipeline can handle.
var supportedExtensions = map[string]bool{
	".pdf":  true,
	".pptx": true,
}

// Dir stores uploaded documents under a single directory. File ids are
// generated server-side and double as on-disk names.
type Dir struct {
	root string
}

// New creates the upload directory if needed.
func New(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("uploads: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("uploads: mkdir root: %w", err)
	}
	return &Dir{root: abs}, nil
}

// Supported reports whether the original filename carries an extension
// the pipeline can extract.
func Supported(filename string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Save streams an uploaded document to disk and returns its generated
// file id: "<unix-millis>_<8 hex chars><original extension>".
func (d *Dir) Save(r io.Reader, originalName string) (string, error) {
	if originalName == "" {
		return "", apperr.Invalid("upload filename is required")
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if !supportedExtensions[ext] {
		return "", apperr.Invalid("unsupported file extension %q", ext)
	}

	var suffix [4]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return "", fmt.Errorf("uploads: random suffix: %w", err)
	}
	fileID := fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), hex.EncodeToString(suffix[:]), ext)

	dst, err := os.Create(filepath.Join(d.root, fileID))
	if err != nil {
		return "", fmt.Errorf("uploads: create: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("uploads: write: %w", err)
	}
	return fileID, nil
}

// Resolve maps a file id back to its absolute path, rejecting ids that
// would escape the upload directory and reporting missing files as
// not-found.
func (d *Dir) Resolve(fileID string) (string, error) {
	cleaned := filepath.Clean(fileID)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", apperr.Invalid("invalid file id %q", fileID)
	}
	abs := filepath.Join(d.root, cleaned)
	if !strings.HasPrefix(abs, d.root+string(os.PathSeparator)) {
		return "", apperr.Invalid("invalid file id %q", fileID)
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return "", apperr.ErrNotFound
		}
		return "", fmt.Errorf("uploads: stat %s: %w", fileID, err)
	}
	return abs, nil
}
