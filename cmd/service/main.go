package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/authkit/internal/cache"
	"github.com/dropDatabas3/authkit/internal/config"
	"github.com/dropDatabas3/authkit/internal/domain/repository"
	"github.com/dropDatabas3/authkit/internal/email"
	ctrl "github.com/dropDatabas3/authkit/internal/http/controllers/auth"
	"github.com/dropDatabas3/authkit/internal/http/router"
	svc "github.com/dropDatabas3/authkit/internal/http/services/auth"
	"github.com/dropDatabas3/authkit/internal/metrics"
	"github.com/dropDatabas3/authkit/internal/oauth"
	"github.com/dropDatabas3/authkit/internal/observability/logger"
	"github.com/dropDatabas3/authkit/internal/security/password"
	"github.com/dropDatabas3/authkit/internal/security/token"
	"github.com/dropDatabas3/authkit/internal/store/memory"
	"github.com/dropDatabas3/authkit/internal/store/pg"
	pgmigrations "github.com/dropDatabas3/authkit/migrations/postgres"
)

func main() {
	// .env es opcional; en deploys reales las vars vienen del entorno.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using system environment")
	}

	cfgPath := flag.String("config", "config.yaml", "path al archivo de configuración")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: "authkit"})
	defer func() { _ = logger.Sync() }()
	zl := logger.With(logger.Component("service"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─── Store ───
	var (
		repo repository.UserRepository
		pool *pgxpool.Pool
	)
	switch cfg.Storage.Driver {
	case "postgres":
		store, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			zl.Fatal("postgres connect failed", logger.Err(err))
		}
		defer store.Close()
		pool = store.Pool()

		if cfg.Flags.Migrate {
			if err := store.RunMigrations(ctx, pgmigrations.FS, pgmigrations.Dir); err != nil {
				zl.Fatal("migrations failed", logger.Err(err))
			}
			zl.Info("migrations applied")
		}
		repo = store
	default:
		zl.Warn("using in-memory store, data is lost on restart")
		repo = memory.New()
	}

	// ─── Cache (state OAuth) ───
	memTTL, _ := time.ParseDuration(cfg.Cache.Memory.DefaultTTL)
	cacheClient, err := cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: memTTL,
	})
	if err != nil {
		zl.Fatal("cache init failed", logger.Err(err))
	}
	defer func() { _ = cacheClient.Close() }()

	// ─── Seguridad ───
	issuer := token.NewIssuer(cfg.JWT.Secret)
	issuer.AccessTTL = cfg.AccessTTL()
	issuer.RefreshTTL = cfg.RefreshTTL()
	issuer.VerifyTTL = cfg.VerifyTTL()

	hasher := password.NewHasher(cfg.Security.BcryptCost)

	// ─── Email ───
	mailer := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
	mailer.TLSMode = cfg.SMTP.TLS
	mailer.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify

	// ─── OAuth ───
	registry := oauth.NewRegistry(
		oauth.Credentials{
			ClientID:     cfg.Providers.Google.ClientID,
			ClientSecret: cfg.Providers.Google.ClientSecret,
			RedirectURL:  cfg.Providers.Google.RedirectURL,
		},
		oauth.Credentials{
			ClientID:     cfg.Providers.GitHub.ClientID,
			ClientSecret: cfg.Providers.GitHub.ClientSecret,
			RedirectURL:  cfg.Providers.GitHub.RedirectURL,
		},
	)

	// ─── Services y controllers ───
	service := svc.NewService(svc.Options{
		Repo:           repo,
		Issuer:         issuer,
		Hasher:         hasher,
		Mailer:         mailer,
		Cache:          cacheClient,
		Registry:       registry,
		FrontendOrigin: cfg.Server.FrontendOrigin,
		StateTTL:       cfg.Providers.StateTTL,
	})

	controllers := ctrl.NewControllers(ctrl.Services{
		SignUp:  service,
		SignIn:  service,
		Verify:  service,
		Refresh: service,
		OAuth:   service,
	}, ctrl.Options{
		SecureCookies:  cfg.App.Env == "prod",
		FrontendOrigin: cfg.Server.FrontendOrigin,
	})

	// ─── Métricas ───
	metricsHandler, err := metrics.Register(metrics.Config{
		Pool: func() *pgxpool.Pool { return pool },
	})
	if err != nil {
		zl.Fatal("metrics init failed", logger.Err(err))
	}

	handler := router.New(router.Deps{
		Controllers:        controllers,
		Issuer:             issuer,
		Repo:               repo,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		MetricsHandler:     metricsHandler,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zl.Info("server listening",
			logger.String("addr", cfg.Server.Addr),
			logger.String("storage", cfg.Storage.Driver),
			logger.String("providers", strings.Join(enabledProviders(cfg), ",")),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		zl.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zl.Error("server exited with error", logger.Err(err))
		os.Exit(1)
	}
	zl.Info("server stopped")
}

func enabledProviders(cfg *config.Config) []string {
	var out []string
	if cfg.Providers.Google.ClientID != "" {
		out = append(out, "google")
	}
	if cfg.Providers.GitHub.ClientID != "" {
		out = append(out, "github")
	}
	return out
}
