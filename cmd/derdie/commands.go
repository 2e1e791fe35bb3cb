package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/derdie/internal/charts"
	"github.com/verte-zerg/derdie/internal/export"
	"github.com/verte-zerg/derdie/internal/lexicon"
	"github.com/verte-zerg/derdie/internal/model"
	"github.com/verte-zerg/derdie/internal/server"
	"github.com/verte-zerg/derdie/internal/stats"
	"github.com/verte-zerg/derdie/internal/store"
)

const (
	defaultServeAddr = server.DefaultAddr
	defaultChartDir  = "charts"
	defaultExportOut = "derdie.xlsx"
	sampleSource     = "sample"
)

var (
	keyStatsGender string
	chartOut       string
	exportOut      string
	serveAddr      string
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Import a noun table (TSV, CSV or XLSX); without a file the bundled sample is used",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadDashboardConfig(cmd)
	if err != nil {
		return err
	}

	source := sampleSource
	var res lexicon.LoadResult
	if len(args) == 1 {
		source = args[0]
		res, err = lexicon.LoadNouns(source)
	} else {
		res, err = lexicon.SampleNouns()
	}
	if err != nil {
		return fmt.Errorf("failed to read nouns from %s: %w", source, err)
	}
	if len(res.Nouns) == 0 {
		return fmt.Errorf("no valid nouns in %s (%d rows skipped)", source, res.Skipped)
	}

	st, closeStore, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeStore()

	ctx := cmd.Context()
	info := store.ImportInfo{Source: source, ImportedAt: time.Now().UTC(), Skipped: res.Skipped}
	if err := st.ReplaceNouns(ctx, res.Nouns, info); err != nil {
		return fmt.Errorf("failed to store nouns: %w", err)
	}
	ix := lexicon.NewIndex(res.Nouns, stats.MaxEndingLen(cfg.Exceptions))
	keys := stats.ComputeKeyEndings(ix, cfg.Exceptions, cfg.KeyCount, cfg.MinKeyAccuracy)
	if err := st.ReplaceKeyEndings(ctx, keys); err != nil {
		return fmt.Errorf("failed to store key endings: %w", err)
	}
	logger.Info("import finished",
		zap.String("source", source),
		zap.Int("nouns", len(res.Nouns)),
		zap.Int("skipped", res.Skipped),
		zap.Int("key_endings", len(keys)),
	)
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %s nouns from %s (%d rows skipped), %d key endings.\n",
		stats.FormatCount(len(res.Nouns)), source, res.Skipped, len(keys))
	return err
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the database path and the last import",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadDashboardConfig(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer closeStore()

	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Database: %s\n", cfg.DBPath); err != nil {
		return err
	}
	info, err := st.LastImport(cmd.Context())
	if err != nil {
		if errors.Is(err, store.ErrEmpty) {
			_, err = fmt.Fprintln(out, "No nouns imported yet. Run: derdie import [file]")
			return err
		}
		return fmt.Errorf("failed to read last import: %w", err)
	}
	_, err = fmt.Fprintf(out, "Last import: %s nouns from %s at %s (%d rows skipped)\n",
		stats.FormatCount(info.Nouns), info.Source, info.ImportedAt.Local().Format("2006-01-02 15:04"), info.Skipped)
	return err
}

func newEndingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "endings",
		Short: "Print the ending table and the gender bar chart",
		Args:  cobra.NoArgs,
		RunE:  runEndingsCmd,
	}
}

func runEndingsCmd(cmd *cobra.Command, _ []string) error {
	report, cfg, err := loadReport(cmd)
	if err != nil {
		return err
	}
	rows := stats.Top(report.Endings, cfg.Top)
	out := cmd.OutOrStdout()
	title := fmt.Sprintf("Top %d endings,", len(rows))
	if err := stats.RenderEndingTable(out, title, rows); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.PlotEndings(out, "", rows, 0); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newKeyStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keystats",
		Short: "Print the gender summary and the key endings",
		Args:  cobra.NoArgs,
		RunE:  runKeyStatsCmd,
	}
	cmd.Flags().StringVar(&keyStatsGender, "gender", "", "limit key endings to one gender (f, m, n, der, die, das or total)")
	return cmd
}

func runKeyStatsCmd(cmd *cobra.Command, _ []string) error {
	gender, err := parseGenderFlag(keyStatsGender)
	if err != nil {
		return err
	}
	report, _, err := loadReport(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummaryTable(out, report.Summary, report.Overall); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderKeyEndingTable(out, stats.FilterKeyEndings(report.KeyEndings, gender)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// parseGenderFlag maps "" and "total" to all genders.
func parseGenderFlag(value string) (model.Gender, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "total") {
		return "", nil
	}
	g, err := model.ParseGender(value)
	if err != nil {
		return "", fmt.Errorf("invalid --gender value: %w", err)
	}
	return g, nil
}

func newExceptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exceptions [ending]",
		Short: "List the exceptions per ending, or the stats of one ending's exceptions",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExceptionsCmd,
	}
}

func runExceptionsCmd(cmd *cobra.Command, args []string) error {
	report, _, err := loadReport(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, ending := range report.Exceptions.Endings() {
			words, _ := report.Exceptions.Get(ending)
			list := "-"
			if len(words) > 0 {
				list = strings.Join(words, ", ")
			}
			if _, err := fmt.Fprintf(out, "%-5s %s\n", ending, list); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	}

	ending := stats.NormalizeEnding(args[0])
	if !report.Exceptions.Has(ending) {
		return fmt.Errorf("unknown ending %q (known: %s)", ending, strings.Join(report.Exceptions.Endings(), ", "))
	}
	rows := report.ExceptionStats(ending)
	if len(rows) == 0 {
		_, err := fmt.Fprintf(out, "-%s has no exceptions.\n", ending)
		return err
	}
	title := fmt.Sprintf("Exceptions of -%s,", ending)
	if err := stats.RenderEndingTable(out, title, rows); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Write the dashboard charts as HTML pages",
		Args:  cobra.NoArgs,
		RunE:  runChartCmd,
	}
	cmd.Flags().StringVar(&chartOut, "out", defaultChartDir, "output directory")
	return cmd
}

func runChartCmd(cmd *cobra.Command, _ []string) error {
	report, cfg, err := loadReport(cmd)
	if err != nil {
		return err
	}
	chartCfg := charts.DefaultChartConfig()
	chartCfg.Top = cfg.Top
	paths, err := charts.WriteAll(chartOut, report, chartCfg)
	if err != nil {
		return fmt.Errorf("failed to write charts: %w", err)
	}
	for _, p := range paths {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", p); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the dashboard tables to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportOut, "out", defaultExportOut, "output workbook")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	report, _, err := loadReport(cmd)
	if err != nil {
		return err
	}
	if err := export.WriteFile(exportOut, report); err != nil {
		return fmt.Errorf("failed to export workbook: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", exportOut)
	return err
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard tables and charts over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultServeAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, fileCfg, err := loadDashboardConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Serve.Addr)

	st, closeStore, err := openStore(cfg.DBPath)
	if err != nil {
		return err
	}
	report, err := stats.BuildReport(cmd.Context(), st, cfg)
	closeStore()
	if err != nil {
		return notInitializedError(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	srv := server.New(report, server.Config{Addr: serveAddr, Top: cfg.Top, Logger: logger})
	return srv.ListenAndServe(ctx)
}
