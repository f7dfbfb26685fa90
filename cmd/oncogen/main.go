package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cce/oncogen/internal/config"
	"github.com/cce/oncogen/internal/domain/lens"
	"github.com/cce/oncogen/internal/domain/synthetic"
	"github.com/cce/oncogen/internal/domain/terminology"
	"github.com/cce/oncogen/internal/platform/fhir"
	"github.com/cce/oncogen/internal/platform/middleware"
	"github.com/cce/oncogen/internal/platform/output"
	"github.com/cce/oncogen/internal/platform/sandbox"
	"github.com/cce/oncogen/internal/platform/telemetry"
)

const version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "oncogen",
		Short:        "Synthetic oncology FHIR data, Lens catalogue and terminology generator",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(syntheticDataCmd())
	rootCmd.AddCommand(catalogueCmd())
	rootCmd.AddCommand(terminologyCmd())
	rootCmd.AddCommand(validateCmd())
	return rootCmd
}

// ---------------------------------------------------------------------------
// Shared setup
// ---------------------------------------------------------------------------

func newLogger(w io.Writer, dev bool) zerolog.Logger {
	if dev {
		return zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// runEnv is what every batch command needs: validated config, a logger on
// stderr and the selected sink.
type runEnv struct {
	cfg    *config.Config
	logger zerolog.Logger
	sink   output.Sink
}

// overrides are flag values that take precedence over the environment.
type overrides struct {
	outputMode string
	format     string
}

func loadEnv(cmd *cobra.Command, o overrides) (*runEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.outputMode != "" {
		cfg.OutputMode = o.outputMode
	}
	if o.format != "" {
		cfg.OutputFormat = o.format
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	sink, err := openSink(cmd.Context(), cfg, cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}
	return &runEnv{
		cfg:    cfg,
		logger: newLogger(cmd.ErrOrStderr(), cfg.IsDev()),
		sink:   sink,
	}, nil
}

// openSink builds the configured sink. Screen output goes to stdout so that
// it can be piped while logs stay on stderr.
func openSink(ctx context.Context, cfg *config.Config, stdout io.Writer) (output.Sink, error) {
	mode, err := output.ParseMode(cfg.OutputMode)
	if err != nil {
		return nil, err
	}
	if mode == output.ModeScreen {
		return output.NewScreenSink(stdout), nil
	}
	sink, err := output.New(ctx, mode, cfg.Output())
	if err != nil {
		return nil, fmt.Errorf("open %s sink: %w", mode, err)
	}
	return sink, nil
}

func (r *runEnv) write(ctx context.Context, doc output.Document) error {
	if err := r.sink.Write(ctx, doc); err != nil {
		return fmt.Errorf("write %s: %w", doc.FileName(), err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// synthetic-data
// ---------------------------------------------------------------------------

type generateOptions struct {
	overrides
	number       int
	resourceType string
	seed         int64
}

func syntheticDataCmd() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "synthetic-data",
		Short: "Generate a transaction Bundle of synthetic oncology resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd, opts.overrides)
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), env, opts)
		},
	}

	kinds := make([]string, 0, len(synthetic.Kinds()))
	for _, k := range synthetic.Kinds() {
		kinds = append(kinds, k.String())
	}
	cmd.Flags().IntVarP(&opts.number, "number", "n", 1, "number of resources to generate")
	cmd.Flags().StringVarP(&opts.resourceType, "resource-type", "r", synthetic.KindBundle.String(),
		"resource kind: "+strings.Join(kinds, ", "))
	cmd.Flags().StringVarP(&opts.outputMode, "output-mode", "o", "", "screen, file, api-call or s3 (default from OUTPUT_MODE)")
	cmd.Flags().StringVar(&opts.format, "format", "", "xml or json (default from OUTPUT_FORMAT)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed, 0 uses SEED or the clock")
	return cmd
}

func runGenerate(ctx context.Context, env *runEnv, opts generateOptions) error {
	kind, err := synthetic.ParseKind(opts.resourceType)
	if err != nil {
		return err
	}
	minDate, err := env.cfg.MinDateTime()
	if err != nil {
		return err
	}
	seed := opts.seed
	if seed == 0 {
		seed = env.cfg.Seed
	}

	svc := synthetic.NewService(env.cfg.Systems(), sandbox.NewDataGenerator(seed, minDate),
		synthetic.WithDeceasedOffset(env.cfg.DeceasedOffsetMonths),
		synthetic.WithLogger(env.logger),
	)
	res, err := svc.Generate(kind, opts.number)
	if err != nil {
		return err
	}
	doc, err := res.Document(env.cfg.Format())
	if err != nil {
		return err
	}
	if err := env.write(ctx, doc); err != nil {
		return err
	}

	env.logger.Info().
		Str("kind", kind.String()).
		Str("bundle_id", res.Bundle.ID).
		Int("entries", len(res.Bundle.Entry)).
		Str("sink", env.sink.Describe()).
		Msg("bundle written")
	return nil
}

// ---------------------------------------------------------------------------
// catalogue
// ---------------------------------------------------------------------------

func catalogueCmd() *cobra.Command {
	var (
		mode   string
		kinds  string
		format string
	)
	cmd := &cobra.Command{
		Use:   "catalogue",
		Short: "Write the Lens catalogue of filterable criteria",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd, overrides{outputMode: mode})
			if err != nil {
				return err
			}
			return runCatalogue(cmd.Context(), env, kinds, format)
		},
	}
	cmd.Flags().StringVarP(&mode, "output-mode", "o", "", "screen, file, api-call or s3 (default from OUTPUT_MODE)")
	cmd.Flags().StringVar(&kinds, "kinds", "", "comma separated categories: patient, specimen, observation, therapy")
	cmd.Flags().StringVar(&format, "format", string(lens.FormatJSON), "json or yaml")
	return cmd
}

func runCatalogue(ctx context.Context, env *runEnv, kindList, formatName string) error {
	kinds, err := lens.ParseKinds(kindList)
	if err != nil {
		return err
	}
	format, err := lens.ParseFormat(formatName)
	if err != nil {
		return err
	}
	registry, err := lens.NewRegistry(env.cfg.Systems())
	if err != nil {
		return err
	}
	catalogue, err := registry.BuildCatalogue(kinds)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := lens.Encode(&buf, catalogue, format); err != nil {
		return err
	}
	doc := output.Document{
		Name:        "catalogue",
		Extension:   format.Extension(),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}
	if err := env.write(ctx, doc); err != nil {
		return err
	}

	env.logger.Info().
		Int("categories", len(catalogue)).
		Str("sink", env.sink.Describe()).
		Msg("catalogue written")
	return nil
}

// ---------------------------------------------------------------------------
// terminology
// ---------------------------------------------------------------------------

func terminologyCmd() *cobra.Command {
	var (
		opts overrides
		name string
	)
	cmd := &cobra.Command{
		Use:   "terminology",
		Short: "Write the CodeSystems behind the catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			return runTerminology(cmd.Context(), env, name)
		},
	}
	cmd.Flags().StringVarP(&opts.outputMode, "output-mode", "o", "", "screen, file, api-call or s3 (default from OUTPUT_MODE)")
	cmd.Flags().StringVar(&opts.format, "format", "", "xml or json (default from OUTPUT_FORMAT)")
	cmd.Flags().StringVar(&name, "name", "", "write only this CodeSystem, e.g. VitalStatusCS")
	return cmd
}

func newTerminologyService(registry *lens.Registry) (*terminology.Service, error) {
	return terminology.NewService(registry.Definitions())
}

func runTerminology(ctx context.Context, env *runEnv, name string) error {
	registry, err := lens.NewRegistry(env.cfg.Systems())
	if err != nil {
		return err
	}
	svc, err := newTerminologyService(registry)
	if err != nil {
		return err
	}

	var systems []*fhir.CodeSystem
	if name != "" {
		cs, err := svc.CodeSystem(name)
		if err != nil {
			return err
		}
		systems = []*fhir.CodeSystem{cs}
	} else if systems, err = svc.CodeSystems(); err != nil {
		return err
	}

	format := env.cfg.Format()
	for _, cs := range systems {
		body, err := format.Encode(cs)
		if err != nil {
			return fmt.Errorf("encode %s: %w", cs.Name, err)
		}
		doc := output.Document{
			Name:        "CodeSystem-" + cs.Name,
			Extension:   format.Extension(),
			ContentType: format.ContentType(),
			Body:        body,
		}
		if err := env.write(ctx, doc); err != nil {
			return err
		}
		env.logger.Info().
			Str("code_system", cs.Name).
			Int("concepts", len(cs.Concept)).
			Str("sink", env.sink.Describe()).
			Msg("code system written")
	}
	return nil
}

// ---------------------------------------------------------------------------
// validate
// ---------------------------------------------------------------------------

// errInvalidBundle makes the process exit non-zero after the issues have
// been printed.
var errInvalidBundle = errors.New("bundle is not a closed transaction")

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <bundle.json>",
		Short: "Check a JSON transaction Bundle for dangling or forward references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return runValidate(cmd.OutOrStdout(), body)
		},
	}
}

func runValidate(w io.Writer, body []byte) error {
	bundle, err := fhir.ParseTransactionBundle(body)
	if err != nil {
		return err
	}
	issues := fhir.ValidateTransactionBundle(bundle)
	if len(issues) == 0 {
		fmt.Fprintf(w, "%s: %d entries, closed\n", bundle.ID, len(bundle.Entries))
		return nil
	}
	for _, issue := range issues {
		fmt.Fprintln(w, issue.Error())
	}
	return fmt.Errorf("%w: %d issues", errInvalidBundle, len(issues))
}

// ---------------------------------------------------------------------------
// serve
// ---------------------------------------------------------------------------

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the generator, catalogue and terminology API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// server holds the wired echo instance and what it depends on.
type server struct {
	echo      *echo.Echo
	telemetry *telemetry.TelemetryProvider
	history   *output.MemorySink
}

// newServer wires every route. It does not listen.
func newServer(cfg *config.Config, logger zerolog.Logger) (*server, error) {
	minDate, err := cfg.MinDateTime()
	if err != nil {
		return nil, err
	}
	systems := cfg.Systems()

	tp := telemetry.NewTelemetryProvider(telemetry.TelemetryConfig{
		ServiceVersion: version,
		Environment:    cfg.Env,
		MetricsEnabled: telemetry.BoolPtr(cfg.MetricsEnabled),
		RuntimeMetrics: !cfg.IsDev(),
	})

	registry, err := lens.NewRegistry(systems)
	if err != nil {
		return nil, fmt.Errorf("build catalogue registry: %w", err)
	}
	termSvc, err := newTerminologyService(registry)
	if err != nil {
		return nil, fmt.Errorf("build terminology: %w", err)
	}
	genSvc := synthetic.NewService(systems, sandbox.NewDataGenerator(cfg.Seed, minDate),
		synthetic.WithDeceasedOffset(cfg.DeceasedOffsetMonths),
		synthetic.WithRecorder(tp),
		synthetic.WithLogger(logger),
	)
	history := output.NewMemorySink(cfg.HistorySize)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(tp.MetricsMiddleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit, cfg.BundleBodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/metrics", tp.PrometheusHandler())

	// API groups
	apiV1 := e.Group("/api/v1")
	fhirGroup := e.Group("/fhir")
	fhirGroup.Use(fhir.ContentNegotiationMiddleware())

	lens.NewHandler(registry).RegisterRoutes(apiV1)
	output.NewHistoryHandler(history).RegisterRoutes(apiV1)

	terminology.NewHandler(termSvc).RegisterRoutes(fhirGroup)

	limiter := middleware.DefaultRateLimitConfig()
	limiter.RequestsPerSecond = cfg.RateLimitRPS
	limiter.BurstSize = cfg.RateLimitBurst
	generated := fhirGroup.Group("", middleware.RateLimit(limiter))
	synthetic.NewHandler(genSvc, synthetic.WithArchive(output.Observe(history, tp.DocumentWritten))).
		RegisterRoutes(generated)

	return &server{echo: e, telemetry: tp, history: history}, nil
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	srv, err := newServer(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to wire server")
	}
	e := srv.echo

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
