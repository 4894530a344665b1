package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/jackc/pgx/v5/pgxpool"

	migrations "github.com/inkpress/inkpress/db"
	"github.com/inkpress/inkpress/internal/admins"
	"github.com/inkpress/inkpress/internal/blogs"
	"github.com/inkpress/inkpress/internal/config"
	"github.com/inkpress/inkpress/internal/db"
	"github.com/inkpress/inkpress/internal/handlers"
	"github.com/inkpress/inkpress/internal/logger"
	"github.com/inkpress/inkpress/internal/mailer"
	"github.com/inkpress/inkpress/internal/resettoken"
	"github.com/inkpress/inkpress/internal/server"
	"github.com/inkpress/inkpress/internal/storage"
	"github.com/inkpress/inkpress/internal/version"
)

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			conn.Close()
			return nil
		},
	})
	return conn, nil
}

// provideImageStore returns a nil store when no bucket is configured; blog
// create and update then simply skip image handling.
func provideImageStore(log *slog.Logger, cfg config.Config) (*storage.ImageStore, error) {
	if strings.TrimSpace(cfg.Storage.Bucket) == "" {
		log.Warn("no storage bucket configured; blog image uploads disabled")
		return nil, nil
	}
	return storage.New(context.Background(), log, cfg.Storage)
}

// provideResetMailer returns a nil mailer when SMTP is not configured; the
// forgot-password endpoint then reports the missing dependency.
func provideResetMailer(log *slog.Logger, cfg config.Config) (handlers.ResetMailer, error) {
	if strings.TrimSpace(cfg.SMTP.Host) == "" {
		log.Warn("no smtp host configured; password reset email disabled")
		return nil, nil
	}
	return mailer.New(log, cfg.SMTP)
}

func provideAuthHandler(log *slog.Logger, cfg config.Config, adminService *admins.Service, resetService *resettoken.Service, resetMailer handlers.ResetMailer) *handlers.AuthHandler {
	return handlers.NewAuthHandler(log, adminService, resetService, resetMailer,
		cfg.Auth.JWTSecret, cfg.Client.BaseURL, cfg.Auth.JWTExpiry())
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr,
		params.Config.Auth.JWTSecret, params.Config.Client.BaseURL,
		params.ServerHandlers...)
}

func startServer(
	lc fx.Lifecycle,
	log *slog.Logger,
	srv *server.Server,
	shutdowner fx.Shutdowner,
	cfg config.Config,
	adminService *admins.Service,
) {
	fmt.Printf("Starting Inkpress %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := ensureAdminAccount(ctx, log, adminService, cfg); err != nil {
				return err
			}

			go func() {
				if err := srv.Start(); err != nil { // block until server is stopped
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}

// ensureAdminAccount seeds the configured admin on first boot. Existing
// accounts are never touched.
func ensureAdminAccount(ctx context.Context, log *slog.Logger, adminService *admins.Service, cfg config.Config) error {
	count, err := adminService.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := strings.TrimSpace(cfg.Admin.Email)
	password := strings.TrimSpace(cfg.Admin.Password)
	if email == "" || password == "" {
		return fmt.Errorf("admin email/password required in config.toml")
	}
	if password == "change-your-password-here" {
		log.Warn("admin password uses default placeholder; please update config.toml")
	}

	admin, err := adminService.Create(ctx, email, password, cfg.Admin.Name)
	if err != nil {
		return err
	}
	log.Info("admin account created", slog.String("email", admin.Email))
	return nil
}

func runMigrate(args []string) error {
	cfg, err := provideConfig()
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	migrationsFS, err := fs.Sub(migrations.MigrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}

	command := "up"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}
	return db.RunMigrate(logger.L, cfg.Postgres, migrationsFS, command, args)
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDBConn,

			admins.NewStore,
			admins.NewService,
			resettoken.NewService,
			blogs.NewStore,
			blogs.NewService,
			provideImageStore,
			provideResetMailer,

			provideServerHandler(provideAuthHandler),
			provideServerHandler(handlers.NewBlogsHandler),
			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(handlers.NewSwaggerHandler),

			provideServer,
		),
		fx.Invoke(
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}
