// Package main provides the CLI entrypoint for derdie.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/verte-zerg/derdie/internal/config"
	"github.com/verte-zerg/derdie/internal/dashui"
	"github.com/verte-zerg/derdie/internal/model"
	"github.com/verte-zerg/derdie/internal/stats"
	"github.com/verte-zerg/derdie/internal/store"
)

var (
	rootDB          string
	rootTop         int
	rootKeyCount    int
	rootMinAccuracy float64
	rootVerbose     bool

	logger = zap.NewNop()
)

func main() {
	if err := config.LoadEnv(".env"); err != nil {
		logErrf("failed to load .env: %v\n", err)
	}
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "derdie",
		Short:         "Dashboard for German noun endings and grammatical gender",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logPath := ""
			if cmd.Parent() == nil {
				logPath = config.DefaultLogPath()
			}
			l, err := newLogger(logPath, rootVerbose)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logger.Sync()
		},
		RunE: runDashboardCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootDB, "db", "", "database path (default: $XDG_DATA_HOME/derdie/derdie.db)")
	flags.IntVar(&rootTop, "top", stats.DefaultTop, "number of endings shown in charts")
	flags.IntVar(&rootKeyCount, "key-count", stats.DefaultKeyCount, "maximum number of key endings")
	flags.Float64Var(&rootMinAccuracy, "min-accuracy", stats.DefaultMinKeyAccuracy, "accuracy a key ending must reach (0-1)")
	flags.BoolVarP(&rootVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newEndingsCmd())
	rootCmd.AddCommand(newKeyStatsCmd())
	rootCmd.AddCommand(newExceptionsCmd())
	rootCmd.AddCommand(newChartCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// newLogger builds a production logger. An empty path logs to stderr.
func newLogger(path string, verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}
	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l, nil
}

// loadDashboardConfig merges the config file into the root flags. Flags set
// on the command line win.
func loadDashboardConfig(cmd *cobra.Command) (model.DashboardConfig, config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.DashboardConfig{}, config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db", &rootDB, fileCfg.Dashboard.DB)
	applyIntConfig(cmd, "top", &rootTop, fileCfg.Dashboard.Top)
	applyIntConfig(cmd, "key-count", &rootKeyCount, fileCfg.KeyEndings.Count)
	applyFloatConfig(cmd, "min-accuracy", &rootMinAccuracy, fileCfg.KeyEndings.MinAccuracy)

	cfg := model.DashboardConfig{
		DBPath:         rootDB,
		Top:            rootTop,
		KeyCount:       rootKeyCount,
		MinKeyAccuracy: rootMinAccuracy,
		Exceptions:     resolveExceptions(fileCfg),
	}
	if cfg.DBPath == "" {
		cfg.DBPath = config.DefaultDBPath()
	}
	if err := validateConfig(cfg); err != nil {
		return model.DashboardConfig{}, config.FileConfig{}, err
	}
	return cfg, fileCfg, nil
}

// resolveExceptions returns the configured exception map, or the curated one
// when the file has no [exceptions] table.
func resolveExceptions(fileCfg config.FileConfig) model.ExceptionMap {
	if len(fileCfg.ExceptionOrder) == 0 {
		return stats.DefaultExceptions()
	}
	m, rejected := stats.ExceptionMapFrom(fileCfg.ExceptionOrder, fileCfg.Exceptions)
	for _, pair := range rejected {
		logger.Warn("ignoring exception that does not end with its ending", zap.String("pair", pair))
	}
	if len(m.Order) == 0 {
		return stats.DefaultExceptions()
	}
	return m
}

func validateConfig(cfg model.DashboardConfig) error {
	if cfg.Top < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	if cfg.KeyCount <= 0 {
		return fmt.Errorf("--key-count must be > 0")
	}
	if cfg.MinKeyAccuracy < 0 || cfg.MinKeyAccuracy > 1 {
		return fmt.Errorf("--min-accuracy must be between 0 and 1")
	}
	return nil
}

func openStore(path string) (*store.Store, func(), error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	closeFn := func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	return st, closeFn, nil
}

// loadReport opens the store and builds the snapshot for one-shot commands.
func loadReport(cmd *cobra.Command) (stats.Report, model.DashboardConfig, error) {
	cfg, _, err := loadDashboardConfig(cmd)
	if err != nil {
		return stats.Report{}, model.DashboardConfig{}, err
	}
	st, closeStore, err := openStore(cfg.DBPath)
	if err != nil {
		return stats.Report{}, model.DashboardConfig{}, err
	}
	defer closeStore()
	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	if err != nil {
		return stats.Report{}, model.DashboardConfig{}, notInitializedError(err)
	}
	return report, cfg, nil
}

func notInitializedError(err error) error {
	if errors.Is(err, store.ErrEmpty) {
		return fmt.Errorf("no nouns imported yet, run: derdie import [file]")
	}
	return fmt.Errorf("failed to build report: %w", err)
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadDashboardConfig(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeStore()

	load := func(ctx context.Context) (stats.Report, error) {
		return stats.BuildReport(ctx, st, cfg)
	}
	logger.Info("starting dashboard", zap.String("db", cfg.DBPath))
	m := dashui.NewModel(load, cfg.Top, logger)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# derdie configuration
# Uncomment a value to enable it. CLI flags override config values.

[dashboard]
# db = "/path/to/derdie.db"   # Database path (default: $XDG_DATA_HOME/derdie/derdie.db)
# top = %d                    # Endings shown in the charts

[key-endings]
# count = %d                  # Maximum number of key endings
# min-accuracy = %.2f         # Accuracy a key ending must reach (0-1)

[serve]
# addr = %q               # HTTP listen address

# Replaces the curated endings. Each exception must end with its ending.
# [exceptions]
# e = ["yte", "bote", "see"]
# ng = ["ang", "ing"]
# er = ["tier", "pier"]
`,
		stats.DefaultTop,
		stats.DefaultKeyCount,
		stats.DefaultMinKeyAccuracy,
		defaultServeAddr,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
