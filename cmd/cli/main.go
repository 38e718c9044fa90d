package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"gocompare/adapters/excel"
	"gocompare/adapters/postgres"
	"gocompare/adapters/stats/engine"
	"gocompare/adapters/stats/hypothesis"
	"gocompare/app"
	"gocompare/domain/comparison"
	"gocompare/domain/core"
	"gocompare/internal"
	"gocompare/internal/config"
	"gocompare/internal/metrics"
	"gocompare/internal/render"
	"gocompare/internal/testkit"
	"gocompare/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "gocompare",
		Short:        "Two-sample comparison with automatic test selection",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newCompareCmd(),
		newSimulateCmd(),
		newGenerateCmd(),
		newMetricsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type compareOptions struct {
	fileA, fileB string
	columns      []string
	metricSpecs  []string
	alpha        float64
	strategy     string
	format       string
	delimiter    string
	sheet        string
	output       string
	workers      int
	databaseURL  string
	experiment   string
	controlGroup string
	testGroup    string
	logLevel     string
	runID        string
}

func newCompareCmd() *cobra.Command {
	var opts compareOptions

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare control and test groups column by column",
		Long: `Compare two groups on raw columns and derived metrics. Each pair is summarized,
tested for normality and variance equality, and compared with the test those checks select.

Examples:
  gocompare compare --a control.csv --b test.csv --metric conversion_rate --metric "Click"
  gocompare compare --a ab.xlsx --sheet Control --b ab.xlsx --column Purchase --format html -o report.html
  gocompare compare --db postgres://localhost/ab --control-group control --test-group test --metric all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd.Context(), cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.fileA, "a", "", "Control group file (.csv or .xlsx)")
	f.StringVar(&opts.fileB, "b", "", "Test group file (.csv or .xlsx)")
	f.StringArrayVar(&opts.columns, "column", nil, "Raw column to compare (repeatable)")
	f.StringArrayVar(&opts.metricSpecs, "metric", nil, `Derived metric: a built-in name, "all", or name=numerator/denominator[:places] (repeatable)`)
	f.Float64Var(&opts.alpha, "alpha", 0, "Significance level (default from ALPHA or 0.05)")
	f.StringVar(&opts.strategy, "strategy", "", "Normality test: auto, shapiro_wilk or kolmogorov_smirnov")
	f.StringVar(&opts.format, "format", "text", "Output format: text, markdown, html or json")
	f.StringVar(&opts.delimiter, "delimiter", "", "CSV delimiter (default from CSV_DELIMITER or ';')")
	f.StringVar(&opts.sheet, "sheet", "", "Worksheet to read from .xlsx files")
	f.StringVarP(&opts.output, "output", "o", "", "Write the report to a file instead of stdout")
	f.IntVar(&opts.workers, "workers", 0, "Metrics compared concurrently")
	f.StringVar(&opts.databaseURL, "db", "", "Read both groups from PostgreSQL instead of files")
	f.StringVar(&opts.experiment, "experiment", "", "Experiment to filter on when reading from PostgreSQL")
	f.StringVar(&opts.controlGroup, "control-group", "control", "Control group value")
	f.StringVar(&opts.testGroup, "test-group", "test", "Test group value")
	f.StringVar(&opts.logLevel, "log-level", "", "ERROR, WARN, INFO, DEBUG or TRACE")
	f.StringVar(&opts.runID, "run-id", "", "UUID to tag the run with (generated when empty)")

	return cmd
}

func runCompare(ctx context.Context, cmd *cobra.Command, opts compareOptions) error {
	appConfig, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyFlags(appConfig, cmd, opts); err != nil {
		return err
	}

	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	defs, err := resolveMetrics(opts.metricSpecs)
	if err != nil {
		return err
	}
	if len(opts.columns) == 0 && len(defs) == 0 {
		defs = append(defs, metrics.Builtin...)
	}

	var runID core.RunID
	if opts.runID != "" {
		if runID, err = core.ParseRunID(opts.runID); err != nil {
			return err
		}
	}

	level, _ := internal.ParseLogLevel(appConfig.LogLevel)
	logger := internal.NewLogger(level)

	control, test, closeFn, err := openSources(appConfig, opts)
	if err != nil {
		return err
	}
	defer closeFn()

	service, err := app.NewComparisonService(appConfig.EngineConfig(), appConfig.Stats.Workers, logger)
	if err != nil {
		return err
	}
	run, err := service.CompareMetrics(ctx, app.CompareRequest{
		Control: control,
		Test:    test,
		Columns: opts.columns,
		Metrics: defs,
		RunID:   runID,
	})
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		file, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", opts.output, err)
		}
		defer file.Close()
		w = file
	}

	if format == render.FormatJSON {
		return render.JSON(w, run)
	}
	heading := fmt.Sprintf("%s vs %s", run.Control, run.Test)
	return render.Write(w, format, heading, sections(run))
}

// applyFlags overlays explicitly set flags on the environment configuration
func applyFlags(c *config.Config, cmd *cobra.Command, opts compareOptions) error {
	flags := cmd.Flags()
	if flags.Changed("alpha") {
		c.Stats.Alpha = opts.alpha
	}
	if opts.strategy != "" {
		c.Stats.NormalityStrategy = opts.strategy
	}
	if opts.delimiter != "" {
		if utf8.RuneCountInString(opts.delimiter) != 1 {
			return fmt.Errorf("--delimiter must be a single character, got %q", opts.delimiter)
		}
		c.Data.CSVDelimiter = opts.delimiter
	}
	if opts.sheet != "" {
		c.Data.Sheet = opts.sheet
	}
	if opts.workers > 0 {
		c.Stats.Workers = opts.workers
	}
	if opts.databaseURL != "" {
		c.Database.URL = opts.databaseURL
	}
	if opts.logLevel != "" {
		c.LogLevel = opts.logLevel
	}
	return c.EngineConfig().Validate()
}

func resolveMetrics(specs []string) ([]metrics.Definition, error) {
	var defs []metrics.Definition
	for _, spec := range specs {
		if strings.EqualFold(spec, "all") {
			defs = append(defs, metrics.Builtin...)
			continue
		}
		def, err := metrics.Resolve(spec)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// openSources builds the control and test sources from files or the database
func openSources(c *config.Config, opts compareOptions) (ports.SampleSource, ports.SampleSource, func(), error) {
	if c.Database.URL != "" && opts.fileA == "" && opts.fileB == "" {
		db, err := sqlx.Connect("postgres", c.Database.URL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		closeFn := func() { db.Close() }

		query := postgres.SampleQuery{
			Table:       c.Database.Table,
			GroupColumn: c.Database.GroupColumn,
			Experiment:  opts.experiment,
		}
		query.Group = opts.controlGroup
		control, err := postgres.NewSampleReader(db, query)
		if err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		query.Group = opts.testGroup
		test, err := postgres.NewSampleReader(db, query)
		if err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		return control, test, closeFn, nil
	}

	if opts.fileA == "" || opts.fileB == "" {
		return nil, nil, nil, fmt.Errorf("both --a and --b are required unless --db is set")
	}
	readerConfig := excel.ReaderConfig{Delimiter: c.Delimiter(), Sheet: c.Data.Sheet}
	return excel.NewDataReader(opts.fileA, readerConfig), excel.NewDataReader(opts.fileB, readerConfig), func() {}, nil
}

func sections(run *app.Run) []render.Section {
	out := make([]render.Section, len(run.Metrics))
	for i, m := range run.Metrics {
		s := render.Section{Title: m.Key.String(), Report: m.Report}
		if m.Definition != "" {
			s.Notes = append(s.Notes, "Definition: "+m.Definition)
		}
		if m.DroppedA > 0 || m.DroppedB > 0 {
			s.Notes = append(s.Notes, fmt.Sprintf("Rows left out: %d control, %d test", m.DroppedA, m.DroppedB))
		}
		out[i] = s
	}
	return out
}

func newSimulateCmd() *cobra.Command {
	var (
		n        int
		trials   int
		seed     int64
		shift    float64
		dist     string
		alpha    float64
		strategy string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Estimate test selection and rejection rates on synthetic samples",
		Long: `Draw sample pairs from a known distribution and run the full comparison on each.
With --shift 0 the rejection rate estimates the false positive rate; otherwise it estimates power.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := engine.DefaultConfig()
			cfg.Alpha = alpha
			cfg.NormalityStrategy = hypothesis.NormalityStrategy(strategy)
			return runSimulate(cmd.OutOrStdout(), cfg, dist, n, trials, seed, shift)
		},
	}

	cmd.Flags().IntVar(&n, "n", 30, "Observations per sample")
	cmd.Flags().IntVar(&trials, "trials", 500, "Number of sample pairs")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic operations")
	cmd.Flags().Float64Var(&shift, "shift", 0, "Location shift applied to the second sample")
	cmd.Flags().StringVar(&dist, "dist", "normal", "Distribution: normal, exponential or uniform")
	cmd.Flags().Float64Var(&alpha, "alpha", comparison.DefaultAlpha, "Significance level")
	cmd.Flags().StringVar(&strategy, "strategy", string(hypothesis.StrategyAuto), "Normality test")

	return cmd
}

func runSimulate(w io.Writer, cfg engine.Config, dist string, n, trials int, seed int64, shift float64) error {
	e, err := engine.NewStatsEngine(cfg)
	if err != nil {
		return err
	}
	gen := testkit.NewGenerator(seed)
	draw, err := sampler(gen, dist)
	if err != nil {
		return err
	}

	reports := make([]*comparison.Report, trials)
	for i := range reports {
		a := draw(n)
		b, err := shifted(draw(n), shift)
		if err != nil {
			return err
		}
		if reports[i], err = e.BuildReport(a, b); err != nil {
			return fmt.Errorf("trial %d: %w", i, err)
		}
	}

	normalRate, err := testkit.AcceptanceRate(trials, func(i int) (bool, error) {
		return reports[i].NormalityA.IsNormal, nil
	})
	if err != nil {
		return err
	}
	rejectRate, err := testkit.AcceptanceRate(trials, func(i int) (bool, error) {
		return reports[i].Verdict.Significant(), nil
	})
	if err != nil {
		return err
	}

	methods := make(map[comparison.Method]int)
	for _, r := range reports {
		methods[r.Comparison.Method()]++
	}
	names := make([]string, 0, len(methods))
	for m := range methods {
		names = append(names, string(m))
	}
	sort.Strings(names)

	fmt.Fprintf(w, "distribution: %s, n=%d, trials=%d, shift=%g, alpha=%g\n", dist, n, trials, shift, cfg.Alpha)
	fmt.Fprintf(w, "normality accepted (sample A): %.3f\n", normalRate)
	fmt.Fprintf(w, "null rejected: %.3f\n", rejectRate)
	for _, name := range names {
		m := comparison.Method(name)
		fmt.Fprintf(w, "  %-20s %d\n", m.DisplayName(), methods[m])
	}
	return nil
}

func sampler(gen *testkit.Generator, dist string) (func(n int) comparison.Sample, error) {
	switch strings.ToLower(dist) {
	case "normal":
		return func(n int) comparison.Sample { return gen.Normal(n, 0, 1) }, nil
	case "exponential":
		return func(n int) comparison.Sample { return gen.Exponential(n, 1) }, nil
	case "uniform":
		return func(n int) comparison.Sample { return gen.Uniform(n, 0, 1) }, nil
	}
	return nil, fmt.Errorf("unknown distribution %q", dist)
}

func shifted(s comparison.Sample, shift float64) (comparison.Sample, error) {
	if shift == 0 {
		return s, nil
	}
	values := s.Values()
	for i := range values {
		values[i] += shift
	}
	return comparison.NewSample(values)
}

func newGenerateCmd() *cobra.Command {
	var (
		outDir    string
		days      int
		lift      float64
		seed      int64
		delimiter string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic daily campaign data for a control and a test group",
		RunE: func(cmd *cobra.Command, args []string) error {
			if utf8.RuneCountInString(delimiter) != 1 {
				return fmt.Errorf("--delimiter must be a single character, got %q", delimiter)
			}
			sep, _ := utf8.DecodeRuneInString(delimiter)

			genConfig := testkit.DefaultShoppingConfig()
			genConfig.Days = days
			genConfig.Lift = lift
			genConfig.Seed = seed
			control, test := testkit.NewShoppingDataGenerator(genConfig).Generate()

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			for name, records := range map[string][]testkit.DailyRecord{"control.csv": control, "test.csv": test} {
				path := filepath.Join(outDir, name)
				if err := testkit.WriteCSV(path, sep, records); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d days)\n", path, len(records))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", ".", "Directory for control.csv and test.csv")
	cmd.Flags().IntVar(&days, "days", 40, "Days of data per group")
	cmd.Flags().Float64Var(&lift, "lift", 0.1, "Purchase rate lift of the test group")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic operations")
	cmd.Flags().StringVar(&delimiter, "delimiter", ";", "CSV delimiter")

	return cmd
}

func newMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "List the built-in derived metrics",
		Run: func(cmd *cobra.Command, args []string) {
			for _, def := range metrics.Builtin {
				fmt.Fprintln(cmd.OutOrStdout(), def.String())
			}
		},
	}
}
