package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/antonio-hickey/dev-notify/internal/domain/model"
	"github.com/antonio-hickey/dev-notify/internal/domain/ports"
	"github.com/antonio-hickey/dev-notify/internal/metrics"
)

const defaultPollInterval = 2 * time.Second

// Follower tails a JSONL feed file and emits one Notification per appended
// line. It starts at the end of the file, survives truncation and rename
// rotation, and skips malformed lines instead of stopping the stream.
type Follower struct {
	path         string
	stripHTML    bool
	logger       ports.Logger
	metrics      *metrics.Metrics
	pollInterval time.Duration

	file    *os.File
	offset  int64
	pending []byte
}

var _ ports.Source = (*Follower)(nil)

// NewFollower creates a follower for the feed file at path. When stripHTML
// is set, HTML fragments in incoming messages and context values are
// flattened to plain text before emission.
func NewFollower(path string, stripHTML bool, logger ports.Logger, m *metrics.Metrics) *Follower {
	return &Follower{
		path:         filepath.Clean(path),
		stripHTML:    stripHTML,
		logger:       logger,
		metrics:      m,
		pollInterval: defaultPollInterval,
	}
}

// Follow watches the feed until ctx is cancelled. Records already present
// when Follow starts are assumed reported by a previous run and skipped.
func (f *Follower) Follow(ctx context.Context, out chan<- model.Notification) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: rotation replaces the inode and a
	// watch on the file itself would go stale.
	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	if err := f.open(io.SeekEnd); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("open feed: %w", err)
	}
	defer f.closeFile()

	f.logger.Info(ctx, "following feed", "path", f.path)

	// The ticker drains records even when the watcher misses events.
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				f.closeFile()
				continue
			}
			if event.Has(fsnotify.Create) {
				f.closeFile()
				if err := f.open(io.SeekStart); err != nil {
					f.logger.Error(ctx, "reopen feed failed", "error", err)
					continue
				}
			}
			if err := f.drain(ctx, out); err != nil {
				return err
			}

		case <-ticker.C:
			if err := f.drain(ctx, out); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Error(ctx, "feed watcher error", "error", err)
		}
	}
}

// drain reads everything appended since the last call and emits the complete
// lines. A partial trailing line stays buffered until its newline arrives.
func (f *Follower) drain(ctx context.Context, out chan<- model.Notification) error {
	if f.file == nil {
		if err := f.open(io.SeekStart); err != nil {
			return nil
		}
	}

	info, err := f.file.Stat()
	if err != nil {
		f.closeFile()
		return nil
	}
	if info.Size() < f.offset {
		// truncated; start over from the top
		if _, err := f.file.Seek(0, io.SeekStart); err != nil {
			f.closeFile()
			return nil
		}
		f.offset = 0
		f.pending = nil
	}

	chunk, err := io.ReadAll(f.file)
	if err != nil {
		f.logger.Error(ctx, "read feed failed", "error", err)
		f.closeFile()
		return nil
	}
	if len(chunk) == 0 {
		return nil
	}
	f.offset += int64(len(chunk))
	f.pending = append(f.pending, chunk...)

	for {
		idx := bytes.IndexByte(f.pending, '\n')
		if idx < 0 {
			return nil
		}
		line := f.pending[:idx]
		f.pending = f.pending[idx+1:]
		if err := f.emit(ctx, out, line); err != nil {
			return err
		}
	}
}

func (f *Follower) emit(ctx context.Context, out chan<- model.Notification, line []byte) error {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}

	var notification model.Notification
	if err := json.Unmarshal(line, &notification); err != nil {
		f.metrics.RecordFeedParseError()
		f.logger.Error(ctx, "skipping malformed feed line", "error", err)
		return nil
	}
	if f.stripHTML {
		notification = sanitize(notification)
	}

	f.metrics.RecordFeedRecord()
	select {
	case out <- notification:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Follower) open(whence int) error {
	file, err := os.Open(f.path)
	if err != nil {
		return err
	}

	var offset int64
	if whence == io.SeekEnd {
		offset, err = file.Seek(0, io.SeekEnd)
		if err != nil {
			file.Close()
			return fmt.Errorf("seek feed: %w", err)
		}
	}

	f.file = file
	f.offset = offset
	f.pending = nil
	return nil
}

func (f *Follower) closeFile() {
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}
	f.pending = nil
}
