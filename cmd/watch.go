package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/recaplabs/recap-cli/config"
	"github.com/recaplabs/recap-cli/pkg/history"
	"github.com/recaplabs/recap-cli/pkg/logging"
	"github.com/recaplabs/recap-cli/pkg/metrics"
	"github.com/recaplabs/recap-cli/pkg/session"
)

// Watch command flags.
var (
	watchBackfill    bool
	watchMetricsAddr string
	watchSettle      time.Duration
)

// WatchCommandDeps holds the dependencies for the watch command.
type WatchCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)
	NewSession func(cfg *config.CLIConfig, log logging.Logger, m *metrics.Metrics) *session.Session
	OpenStore  func(cfg *config.CLIConfig, log logging.Logger) (*history.Store, error)
}

// DefaultWatchDeps returns the default dependencies for production use.
func DefaultWatchDeps() *WatchCommandDeps {
	return &WatchCommandDeps{
		LoadConfig: config.LoadConfig,
		NewSession: func(cfg *config.CLIConfig, log logging.Logger, m *metrics.Metrics) *session.Session {
			return session.New(NewAPIClient(cfg, log, m), log, m)
		},
		OpenStore: openHistory,
	}
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(deps *WatchCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultWatchDeps()
	}

	cmd := &cobra.Command{
		Use:   "watch <directory>",
		Short: "Watch a directory and analyze new transcripts",
		Long: `Watch a drop directory for new transcript files (.txt or .md).

Each new file is analyzed through the same pipeline as 'recap analyze' and
recorded in the local meeting history. The watcher runs until interrupted.

With --metrics-addr, a Prometheus /metrics endpoint reports backend call
counts and latencies, fallback substitutions, and meetings analyzed.

Examples:
  # Watch a drop folder
  recap watch ~/meetings/inbox

  # Also analyze files already in the folder at startup
  recap watch ~/meetings/inbox --backfill

  # Serve metrics while watching
  recap watch ~/meetings/inbox --metrics-addr :9321`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, deps, args[0])
		},
	}

	cmd.Flags().BoolVar(&watchBackfill, "backfill", false, "Analyze files already present in the directory")
	cmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on (e.g. :9321)")
	cmd.Flags().DurationVar(&watchSettle, "settle", 500*time.Millisecond, "Delay after a file event before reading, letting writes finish")

	return cmd
}

func runWatch(cmd *cobra.Command, deps *WatchCommandDeps, dir string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	deps.Config = cfg

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch target %q is not a directory", dir)
	}

	log := newLogger(cfg)
	m := metrics.New("recap")

	store, err := deps.OpenStore(cfg, log)
	if err != nil {
		return fmt.Errorf("opening meeting history: %w", err)
	}
	defer store.Close()

	if watchMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv := &http.Server{Addr: watchMetricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server failed", logging.Err(err))
			}
		}()
		defer srv.Close()
		log.Info("metrics endpoint up", logging.F("addr", watchMetricsAddr))
	}

	ctx := cmd.Context()
	processed := make(map[string]bool)

	process := func(path string) {
		if processed[path] || !isTranscriptFile(path) {
			return
		}
		processed[path] = true
		if err := analyzeFile(ctx, deps, cfg, log, m, store, path); err != nil {
			log.Error("file analysis failed", logging.F("path", path), logging.Err(err))
		}
	}

	if watchBackfill {
		entries, err := filepath.Glob(filepath.Join(dir, "*"))
		if err != nil {
			return fmt.Errorf("scanning directory: %w", err)
		}
		for _, e := range entries {
			process(e)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	log.Info("watching for transcripts", logging.F("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Give the writer a moment to finish the file.
			time.Sleep(watchSettle)
			process(evt.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", logging.Err(err))
		}
	}
}

func isTranscriptFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return true
	default:
		return false
	}
}

// analyzeFile runs one dropped file through the analysis pipeline and
// records the result.
func analyzeFile(ctx context.Context, deps *WatchCommandDeps, cfg *config.CLIConfig, log logging.Logger, m *metrics.Metrics, store *history.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	transcript := string(data)

	sess := deps.NewSession(cfg, log, m)
	callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := sess.Analyze(callCtx, transcript); err != nil {
		return err
	}
	records, _ := sess.Records()

	now := time.Now()
	meeting := &history.Meeting{
		ID:           history.MeetingID(transcript, now),
		Title:        strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Date:         now,
		Participants: history.ExtractParticipants(transcript),
		Transcript:   transcript,
		Summary:      records.Summary,
		Sentiment:    records.Sentiment,
		Coaching:     records.Coaching,
	}
	if err := store.Put(callCtx, meeting); err != nil {
		return err
	}
	log.Info("transcript analyzed and recorded",
		logging.F("path", path), logging.F("meeting_id", meeting.ID))
	return nil
}
