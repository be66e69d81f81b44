package notestore

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called for note-document changes observed on disk.
// kind is one of "updated", "deleted". fileID is the id the document
// belongs to.
type EventCallback func(kind, fileID string)

// Watch starts an fsnotify watcher on the store root and reports note
// document changes until ctx is cancelled. It observes writes from
// this process and from anything else touching the data directory, so
// subscribers see regenerations regardless of origin.
func Watch(ctx context.Context, store *Store, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(store.Root()); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", store.Root()))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			fileID, ok := documentID(ev.Name)
			if !ok {
				continue
			}
			switch {
			// Atomic saves surface as Create (the rename target);
			// direct writes surface as Write. Both mean "updated".
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				logger.Debug("watcher: note updated", slog.String("file_id", fileID))
				if cb != nil {
					cb("updated", fileID)
				}
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				logger.Debug("watcher: note removed", slog.String("file_id", fileID))
				if cb != nil {
					cb("deleted", fileID)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// documentID extracts the file id from a note document path, rejecting
// temp files from in-flight atomic writes.
func documentID(path string) (string, bool) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
		return "", false
	}
	return strings.TrimSuffix(name, ".json"), true
}
