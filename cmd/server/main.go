package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-router"
	users "github.com/goliatone/go-users"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config   *users.EnvConfig
	bunDB    *bun.DB
	repo     users.RepositoryManager
	accounts *users.Accounts
	srv      router.Server[*fiber.App]
	logger   *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("users"),
	)

	cfg, err := users.LoadConfig()
	if err != nil {
		lgr.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		lgr.Error("failed to initialize persistence", "error", err)
		os.Exit(1)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		lgr.Error("failed to initialize HTTP server", "error", err)
		os.Exit(1)
	}

	if err := WithAccounts(ctx, app); err != nil {
		lgr.Error("failed to initialize accounts", "error", err)
		os.Exit(1)
	}

	app.srv.Serve(cfg.GetHTTPAddr())

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	pcfg := app.config.GetPersistence()

	db, err := sql.Open(sqliteshim.ShimName, pcfg.GetDSN())
	if err != nil {
		return err
	}

	persistence.RegisterModel((*users.User)(nil))

	client, err := persistence.New(pcfg, db, sqlitedialect.New())
	if err != nil {
		return err
	}

	client.SetLogger(app.GetLogger("persistence").Debug)

	// migrations are embedded per dialect; mount the set for the active driver
	migrationsFS, err := fs.Sub(users.GetMigrationsFS(), "data/sql/migrations/"+pcfg.GetDriver())
	if err != nil {
		return err
	}

	client.RegisterSQLMigrations(migrationsFS)

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	bunDB, ok := client.DB().(*bun.DB)
	if !ok {
		return fmt.Errorf("unexpected database handle %T", client.DB())
	}

	app.bunDB = bunDB
	app.repo = users.NewRepositoryManager(bunDB)

	return app.repo.Validate()
}

func WithHTTPServer(ctx context.Context, app *App) error {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	app.srv = srv
	return nil
}

func WithAccounts(ctx context.Context, app *App) error {
	cfg := app.config

	tokens := users.NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		app.GetLogger("users:tokens"),
	)

	app.accounts = users.NewAccounts(app.repo, tokens).
		WithLogger(app.GetLogger("users:svc"))

	users.RegisterUserRoutes(
		app.srv.Router(),
		app.accounts,
		cfg,
		users.WithControllerLogger(app.GetLogger("users:http")),
	)

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
