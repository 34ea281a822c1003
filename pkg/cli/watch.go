package cli

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/platinummonkey/cstyle/pkg/csource"
	"github.com/platinummonkey/cstyle/pkg/linter"
	"github.com/platinummonkey/cstyle/pkg/observability"
	"github.com/platinummonkey/cstyle/pkg/report"
)

// changeQueue collects changed paths and releases them once they have been
// quiet for delay, so an editor writing a file several times triggers one
// re-check.
type changeQueue struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]time.Time
}

func newChangeQueue(delay time.Duration) *changeQueue {
	return &changeQueue{
		delay:   delay,
		pending: make(map[string]time.Time),
	}
}

// Add records a change to path at t. A later change to the same path resets
// its timer.
func (q *changeQueue) Add(path string, t time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending[path] = t
}

// Ready removes and returns, sorted, the paths whose last change is at least
// delay before now
func (q *changeQueue) Ready(now time.Time) []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	var ready []string
	for path, changed := range q.pending {
		if now.Sub(changed) >= q.delay {
			ready = append(ready, path)
			delete(q.pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}

// Len returns the number of pending paths
func (q *changeQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func newWatchCommand(a *app) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "watch <path>...",
		Short: "Re-check C files whenever they change",
		Long: `Check the given paths, then watch them and re-check whenever a .c or .h file
is written. Results of unchanged files are reused. Stop with Ctrl-C.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd.Context(), cmd.Flags(), opts, args)
		},
	}
	addCheckFlags(cmd.Flags(), opts, a.env)
	return cmd
}

func (a *app) runWatch(ctx context.Context, flags *pflag.FlagSet, opts *checkOptions, args []string) error {
	s, err := resolveSettings(flags, opts, a.env)
	if err != nil {
		return usageError(err)
	}

	logger := a.logger
	ctx = observability.WithLogger(ctx, logger)

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	engine, err := linter.NewEngine(s.config, newRegistry(),
		linter.WithLogger(logger),
		linter.WithMetrics(metrics),
		linter.WithWorkers(s.workers),
		linter.WithCache(linter.NewResultCache(a.env.Check.CacheSize, a.env.Check.CacheTTL)),
	)
	if err != nil {
		return usageError(err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return usageError(err)
	}
	defer watcher.Close()

	for _, root := range args {
		if err := setupWatcher(watcher, root); err != nil {
			return usageError(err)
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	recheck := func() error {
		defer observability.RecoverPanic(logger, "watch re-check")
		runCtx := observability.WithRunID(ctx, uuid.NewString())
		if _, err := a.checkOnce(runCtx, engine, s, args); err != nil {
			return err
		}
		if opts.metricsFile != "" {
			if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
				logger.WithError(err).Warn("failed to write metrics")
			}
		}
		return nil
	}

	if err := recheck(); err != nil {
		return err
	}

	queue := newChangeQueue(a.env.Check.WatchDebounce)
	ticker := time.NewTicker(pollInterval(a.env.Check.WatchDebounce))
	defer ticker.Stop()

	logger.WithField("paths", args).Info("watching for changes")
	for {
		select {
		case <-ctx.Done():
			return &ExitError{Code: report.ExitCancelled}

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 && csource.IsSourcePath(event.Name) {
				queue.Add(event.Name, time.Now())
			}

			// Also watch new directories
			if event.Op&fsnotify.Create != 0 {
				fi, err := os.Stat(event.Name)
				if err == nil && fi.IsDir() && !skipDir(fi.Name()) {
					if err := setupWatcher(watcher, event.Name); err != nil {
						logger.WithError(err).Warn("failed to watch new directory")
					}
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WithError(err).Warn("watcher error")

		case now := <-ticker.C:
			changed := queue.Ready(now)
			if len(changed) == 0 {
				continue
			}
			logger.WithField("files", changed).Info("files changed")
			if err := recheck(); err != nil {
				// A path removed while watching is reported and the watch continues
				logger.WithError(err).Warn("re-check failed")
			}
		}
	}
}

// setupWatcher adds root and every directory below it that discovery would
// descend into. A file argument watches its directory.
func setupWatcher(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func pollInterval(debounce time.Duration) time.Duration {
	interval := debounce / 2
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	return interval
}
