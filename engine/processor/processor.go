// Package processor applies a comment-removal pipeline to files on disk.
package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/compozy/clear-comments/engine/backup"
	"github.com/compozy/clear-comments/engine/stripper"
	"github.com/compozy/clear-comments/pkg/logger"
)

const (
	defaultWriteRetries = 3
	writeRetryBase      = 20 * time.Millisecond
)

// Processor reads, strips and rewrites files.
type Processor struct {
	fs           afero.Fs
	pipeline     *stripper.Pipeline
	backups      *backup.Manager
	concurrency  int
	observer     Observer
	log          logger.Logger
	writeRetries uint64
}

// Option configures a Processor.
type Option func(*Processor)

// WithBackup enables copy-before-write through m.
func WithBackup(m *backup.Manager) Option {
	return func(p *Processor) {
		p.backups = m
	}
}

// WithConcurrency bounds the number of files processed at once. Values below
// one select GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		p.concurrency = n
	}
}

// WithObserver registers a per-file event observer.
func WithObserver(o Observer) Option {
	return func(p *Processor) {
		p.observer = o
	}
}

// WithLogger sets the processor logger.
func WithLogger(log logger.Logger) Option {
	return func(p *Processor) {
		if log != nil {
			p.log = log
		}
	}
}

// WithWriteRetries sets how often a write failing with a transient error is
// retried.
func WithWriteRetries(n uint64) Option {
	return func(p *Processor) {
		p.writeRetries = n
	}
}

// New creates a processor that applies pipeline to files of fs.
func New(fs afero.Fs, pipeline *stripper.Pipeline, opts ...Option) *Processor {
	p := &Processor{
		fs:           fs,
		pipeline:     pipeline,
		writeRetries: defaultWriteRetries,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.concurrency < 1 {
		p.concurrency = runtime.GOMAXPROCS(0)
	}
	if p.log == nil {
		p.log = logger.GetDefault()
	}
	return p
}

// ProcessFile strips one file. The file is rewritten only when its content
// changed, and only after its backup, if enabled, succeeded.
func (p *Processor) ProcessFile(ctx context.Context, path string) FileResult {
	result := FileResult{Path: path}
	fileType, ok := stripper.FileTypeFromPath(path)
	if !ok {
		result.Err = fmt.Errorf("unsupported file extension: %s", filepath.Ext(path))
		return result
	}
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}
	info, err := p.fs.Stat(path)
	if err != nil {
		result.Err = fmt.Errorf("failed to stat file: %w", err)
		return result
	}
	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		result.Err = fmt.Errorf("failed to read file: %w", err)
		return result
	}
	if mime, binary := detectBinary(data); binary {
		result.Err = fmt.Errorf("binary content (%s)", mime)
		return result
	}

	original := string(data)
	cleaned := p.pipeline.Apply(original, fileType)
	result.OriginalLines = countLines(original)
	result.NewLines = countLines(cleaned)
	if cleaned == original {
		return result
	}

	if p.backups != nil {
		dest, created, err := p.backups.Backup(path)
		if err != nil {
			result.Err = fmt.Errorf("backup failed: %w", err)
			return result
		}
		result.BackupPath = dest
		result.BackupCreated = created
	}
	if err := p.write(ctx, path, []byte(cleaned), info.Mode().Perm()); err != nil {
		result.Err = fmt.Errorf("failed to write file: %w", err)
		return result
	}
	result.Modified = true
	return result
}

func (p *Processor) write(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	backoff := retry.WithMaxRetries(p.writeRetries, retry.NewExponential(writeRetryBase))
	return retry.Do(ctx, backoff, func(_ context.Context) error {
		err := afero.WriteFile(p.fs, path, data, perm)
		if err != nil && isTransient(err) {
			p.log.Debug("retrying write", "file", path, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func isTransient(err error) bool {
	return errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EINTR)
}

// ProcessFiles processes files with bounded parallelism. Per-file failures are
// collected in the summary as "<relative path>: <message>", sorted by path.
// Files not yet started when ctx is cancelled are skipped and ctx.Err() is
// returned with the partial summary.
func (p *Processor) ProcessFiles(ctx context.Context, root string, files []string) (Summary, error) {
	summary := Summary{TotalFiles: len(files), Errors: []string{}}
	type failure struct {
		rel string
		msg string
	}
	var (
		mu       sync.Mutex
		failures []failure
	)

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for _, path := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res := p.ProcessFile(ctx, path)
			rel := relativePath(root, path)

			mu.Lock()
			defer mu.Unlock()
			event := FileEvent{Path: path, Rel: rel, BackedUp: res.BackupCreated}
			switch {
			case res.Err != nil:
				failures = append(failures, failure{rel: rel, msg: res.Err.Error()})
				event.Kind = EventFailed
				event.Err = res.Err
				p.log.Debug("failed to process file", "file", rel, "error", res.Err)
			case res.Modified:
				summary.ProcessedFiles++
				summary.TotalLinesRemoved += res.LinesRemoved()
				if event.BackedUp {
					summary.BackupsCreated++
				}
				event.Kind = EventCleaned
				event.LinesRemoved = res.LinesRemoved()
				p.log.Debug("cleaned file", "file", rel, "lines_removed", res.LinesRemoved())
			default:
				event.Kind = EventSkipped
			}
			if p.observer != nil {
				p.observer.OnFile(event)
			}
			return nil
		})
	}
	_ = g.Wait()

	slices.SortStableFunc(failures, func(a, b failure) int {
		return strings.Compare(a.rel, b.rel)
	})
	for _, f := range failures {
		summary.Errors = append(summary.Errors, f.rel+": "+f.msg)
	}
	return summary, ctx.Err()
}

// detectBinary reports whether data is not text, with its detected MIME type.
func detectBinary(data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return detected.String(), false
		}
	}
	return detected.String(), true
}

// countLines counts lines as newline-separated segments, so "" is one line.
func countLines(s string) int {
	return strings.Count(s, "\n") + 1
}

func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
