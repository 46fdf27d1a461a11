package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/beawarely-feed/internal/feed"
	"github.com/anonto42/beawarely-feed/internal/realtime"
	"github.com/anonto42/beawarely-feed/internal/render"
	"github.com/anonto42/beawarely-feed/internal/repositories"
	"github.com/anonto42/beawarely-feed/internal/router"
	"github.com/anonto42/beawarely-feed/internal/session"
	"github.com/anonto42/beawarely-feed/pkg/config"
	"github.com/anonto42/beawarely-feed/pkg/firebase"
	"github.com/anonto42/beawarely-feed/pkg/logger"
	"github.com/anonto42/beawarely-feed/validators"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	root := &cobra.Command{
		Use:           "beawarely-feed",
		Short:         "Server-rendered social feed with live updates",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create the feed tables and change triggers in PostgreSQL",
			RunE:  runMigrate,
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg := config.Load()
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.DataBackend != config.BackendPostgres {
		return fmt.Errorf("migrate only supports the %s backend", config.BackendPostgres)
	}
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	if err := repositories.Migrate(db.Postgres); err != nil {
		return err
	}
	log.Info("migrations completed")
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg, log)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	var (
		repos  *repositories.Set
		source realtime.ChangeSource
	)
	switch cfg.DataBackend {
	case config.BackendPostgres:
		if cfg.AutoMigrate {
			if err := repositories.Migrate(db.Postgres); err != nil {
				return err
			}
			log.Info("migrations completed")
		}
		repos = repositories.NewPostgresSet(db.Postgres)
		source = realtime.NewPGListener(cfg.PostgresConnStr, log)
	case config.BackendMongo:
		repos = repositories.NewMongoSet(db.MongoDatabase())
		source = realtime.NewMongoWatcher(db.MongoDatabase(), log)
	}

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return err
	}

	location, err := cfg.Location()
	if err != nil {
		return err
	}
	opts := render.Options{
		PlaceholderAvatar: cfg.PlaceholderAvatarURL,
		ProfilePath:       cfg.ProfilePath,
		LoginPath:         cfg.LoginPath,
		Location:          location,
	}
	if cfg.LiveUpdates {
		opts.LiveURL = router.LiveFeedPath
	}
	renderer := render.New(opts)
	pipeline := feed.NewPipeline(
		feed.NewAggregator(repos, log),
		feed.NewProfileResolver(repos.Profiles, cfg.SupabaseURL, cfg.PlaceholderAvatarURL, log),
		renderer,
		repos.UserPosts,
		log,
	)

	deps := router.Deps{
		Pipeline: pipeline,
		Gate:     session.NewGate(verifier, log),
		Logger:   log,
	}
	if cfg.LiveUpdates {
		hub := realtime.NewHub(log)
		go hub.Run(ctx)
		go realtime.NewBridge(source, hub, log).Run(ctx)
		deps.Hub = hub
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e, log)
	router.SetupRoutes(e, deps)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	}()

	log.Info("starting server", zap.String("port", cfg.Port), zap.String("backend", cfg.DataBackend))
	if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newVerifier(ctx context.Context, cfg *config.Config) (session.Verifier, error) {
	switch cfg.AuthProvider {
	case config.AuthFirebase:
		client, err := firebase.NewAuthClient(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Firebase: %w", err)
		}
		return session.NewFirebaseVerifier(client), nil
	default:
		return session.NewSupabaseVerifier(cfg.SupabaseJWTSecret), nil
	}
}
