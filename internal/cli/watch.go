package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"paperrag/internal/domain"
	"paperrag/internal/extract"
	"paperrag/internal/logger"
)

var (
	watchSettle   time.Duration
	watchExisting bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Add papers as they appear in a directory",
	Long: `Watches a directory and adds every new PDF, text, Markdown or HTML file to the
index once it has stopped changing. Files are added one at a time.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", time.Second, "how long a file must be unchanged before it is added")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also add files already in the directory")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	svc, err := currentService()
	if err != nil {
		return err
	}
	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	ctx := cmd.Context()
	ingest := func(path string) {
		msg, err := svc.AddFile(ctx, path)
		switch {
		case errors.Is(err, domain.ErrPaperExists):
			logger.Debug("skipping %s: already indexed", path)
		case err != nil:
			logger.Error("adding %s: %v", path, err)
		default:
			cmd.Println(msg)
		}
	}

	if watchExisting {
		paths, err := existingFiles(dir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			ingest(p)
		}
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	return watchLoop(ctx, watcher.Events, watcher.Errors, watchSettle, ingest)
}

// watchLoop collects candidate files from events and hands each to ingest once no
// event has touched it for settle. It runs until ctx is done or events is closed.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, settle time.Duration, ingest func(string)) error {
	tick := settle / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	pending := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if path, ok := ingestable(ev); ok {
				pending[path] = time.Now()
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		case now := <-ticker.C:
			for _, path := range readyPaths(pending, now, settle) {
				delete(pending, path)
				ingest(path)
			}
		}
	}
}

// ingestable reports whether ev creates or writes a visible regular file with a
// supported extension.
func ingestable(ev fsnotify.Event) (string, bool) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return "", false
	}
	if strings.HasPrefix(filepath.Base(ev.Name), ".") || !extract.Supported(ev.Name) {
		return "", false
	}
	info, err := os.Stat(ev.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return ev.Name, true
}

func readyPaths(pending map[string]time.Time, now time.Time, settle time.Duration) []string {
	var ready []string
	for path, last := range pending {
		if now.Sub(last) >= settle {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	return ready
}

func existingFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasPrefix(name, ".") || !extract.Supported(name) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	return paths, nil
}
