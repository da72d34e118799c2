package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fbo-launchpad/fuel-ops/internal"
	"github.com/fbo-launchpad/fuel-ops/internal/aircraft"
	aircraftPostgres "github.com/fbo-launchpad/fuel-ops/internal/aircraft/postgres"
	"github.com/fbo-launchpad/fuel-ops/internal/auth"
	authPostgres "github.com/fbo-launchpad/fuel-ops/internal/auth/postgres"
	"github.com/fbo-launchpad/fuel-ops/internal/customer"
	customerPostgres "github.com/fbo-launchpad/fuel-ops/internal/customer/postgres"
	"github.com/fbo-launchpad/fuel-ops/internal/fuelorder"
	fuelorderPostgres "github.com/fbo-launchpad/fuel-ops/internal/fuelorder/postgres"
	"github.com/fbo-launchpad/fuel-ops/internal/rbac"
	rbacPostgres "github.com/fbo-launchpad/fuel-ops/internal/rbac/postgres"
	"github.com/fbo-launchpad/fuel-ops/internal/transport/rest"
	"github.com/fbo-launchpad/fuel-ops/internal/truck"
	truckPostgres "github.com/fbo-launchpad/fuel-ops/internal/truck/postgres"
	"github.com/fbo-launchpad/fuel-ops/internal/user"
	userPostgres "github.com/fbo-launchpad/fuel-ops/internal/user/postgres"
	"github.com/fbo-launchpad/fuel-ops/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	router := chi.NewRouter()
	handlers, resolver := buildHandlers(cfg, gormDB, lg)
	rest.RegisterAllRoutes(router, db.DB, handlers, resolver, cfg.Server.AllowedOrigins, lg)

	return &Dependencies{
		Config: cfg,
		DB:     db,
		GormDB: gormDB,
		Router: router,
		Logger: lg,
	}, nil
}

func buildHandlers(cfg *internal.Config, db *gorm.DB, lg *slog.Logger) (rest.Handlers, *rbac.Resolver) {
	rbacRepo := rbacPostgres.NewRepository(db)
	resolver := rbac.NewResolver(rbacRepo, lg)
	rbacService := rbac.NewService(rbacRepo, lg)

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(db), tokenGen, cfg.Security.BCryptCost)

	userService := user.NewService(userPostgres.NewUserRepository(db), authService, lg)
	truckService := truck.NewService(truckPostgres.NewTruckRepository(db), lg)
	aircraftService := aircraft.NewService(aircraftPostgres.NewAircraftRepository(db), lg)
	customerService := customer.NewService(customerPostgres.NewCustomerRepository(db), lg)

	orderService := fuelorder.NewService(
		fuelorderPostgres.NewFuelOrderRepository(db),
		resolver,
		userService,
		truckService,
		aircraftService,
		lg,
	)

	return rest.Handlers{
		Auth:      auth.NewHandler(authService),
		User:      user.NewHandler(userService),
		FuelOrder: fuelorder.NewHandler(orderService),
		RBAC:      rbac.NewHandler(rbacService),
		Truck:     truck.NewHandler(truckService),
		Aircraft:  aircraft.NewHandler(aircraftService),
		Customer:  customer.NewHandler(customerService),
	}, resolver
}

// initDB opens the pgx-backed connection used for liveness checks and shares
// its pool with gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	dbConn, err := sqlx.Connect("pgx", cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
