// Package cli implements the paperrag command line.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"paperrag/internal/config"
	"paperrag/internal/domain"
	"paperrag/internal/index"
	"paperrag/internal/logger"
)

// PaperService is the application surface the commands drive.
type PaperService interface {
	AddFile(ctx context.Context, path string) (string, error)
	Retrieve(query string, topK int) []domain.SearchResult
	Ask(ctx context.Context, question string) (domain.Answer, error)
	Summarize(ctx context.Context, name string) (string, error)
	Papers(ctx context.Context) ([]domain.Paper, error)
	Stats() (papers, chunks int)
	Close() error
}

var (
	cfgPath   string
	indexPath string
	verbose   bool

	appConfig    *config.AppConfig
	paperService PaperService
	ownsService  bool
)

var rootCmd = &cobra.Command{
	Use:   "paperrag",
	Short: "Search and question research papers",
	Long: `paperrag indexes research papers (PDF, text, Markdown, HTML) into a TF-IDF
index and retrieves the passages most relevant to a query. With a generator
configured it answers questions and summarizes papers with citations.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (YAML, or TOML with .toml extension)")
	rootCmd.PersistentFlags().StringVar(&indexPath, "index", "", "index path prefix (overrides index.path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// SetService injects the service used by the commands instead of building one from config.
func SetService(svc PaperService) {
	paperService = svc
	ownsService = false
}

// Execute runs the root command, cancelling its context on SIGINT or SIGTERM.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	// PersistentPostRunE is skipped when a command fails.
	if cerr := teardown(rootCmd, nil); err == nil {
		err = cerr
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if paperService != nil || !needsService(cmd) {
		return nil
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		var path string
		cfg, path, err = config.LoadDefault()
		if err == nil {
			logger.Debug("using config %s", path)
		}
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return err
	}
	if indexPath != "" {
		cfg.Index.Path = indexPath
	}
	logger.SetVerbose(verbose || cfg.Log.Verbose)

	svc, err := buildService(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	appConfig = cfg
	paperService = svc
	ownsService = true
	return nil
}

// needsService is false for cobra's built-in help and completion commands.
func needsService(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion":
			return false
		}
	}
	return true
}

func teardown(_ *cobra.Command, _ []string) error {
	if !ownsService || paperService == nil {
		return nil
	}
	err := paperService.Close()
	paperService = nil
	ownsService = false
	return err
}

func currentService() (PaperService, error) {
	if paperService == nil {
		return nil, errors.New("paper service not configured")
	}
	return paperService, nil
}

func defaultTopK() int {
	if appConfig != nil && appConfig.Index.TopK > 0 {
		return appConfig.Index.TopK
	}
	return index.DefaultTopK
}
