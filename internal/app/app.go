package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"school-service/internal/attendance"
	"school-service/internal/config"
	"school-service/internal/db"
	"school-service/internal/events"
	"school-service/internal/exam"
	"school-service/internal/health"
	"school-service/internal/logger"
	"school-service/internal/metrics"
	"school-service/internal/middleware"
	"school-service/internal/student"
	"school-service/internal/telemetry"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// RouteRegistrar is implemented by every HTTP handler.
type RouteRegistrar interface {
	RegisterRoutes(router chi.Router)
}

type App struct {
	config        *config.Config
	router        chi.Router
	server        *http.Server
	grpcServer    *grpc.Server
	healthServer  *grpchealth.Server
	db            *bun.DB
	publisher     events.Publisher
	meterProvider *sdkmetric.MeterProvider
	logger        *slog.Logger
}

// Models lists the tables bootstrapped at startup, parents first.
func Models() []interface{} {
	return []interface{}{
		(*student.Student)(nil),
		(*student.Marks)(nil),
		(*attendance.Attendance)(nil),
		(*exam.Schedule)(nil),
	}
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := logger.NewWithServiceContext(ServiceName, Version, cfg.Env)

	// Set as default logger so package-level slog calls share the format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application",
		"git_commit", GitCommit,
		"build_time", BuildTime,
	)

	app := &App{
		config: cfg,
		logger: slogLogger,
	}

	app.meterProvider, err = telemetry.InitMeterProvider(ctx, ServiceName, Version, cfg.Telemetry.OTLPEndpoint, slogLogger)
	if err != nil {
		return nil, err
	}

	meter := otel.Meter(ServiceName)
	appMetrics, err := metrics.New(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	serverMetrics, err := metrics.NewServerMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create server metrics: %w", err)
	}

	app.db, err = db.New(ctx, cfg.Database)
	if err != nil {
		app.closeResources(ctx)
		return nil, err
	}

	if err := metrics.RegisterRuntime(meter, metrics.ServiceInfo{
		Name:      ServiceName,
		Version:   Version,
		GitCommit: GitCommit,
		Env:       cfg.Env,
	}); err != nil {
		slogLogger.Warn("failed to register runtime metrics", "error", err)
	}

	if err := appMetrics.Database.RegisterDB(app.db.DB, meter); err != nil {
		slogLogger.Warn("failed to register database pool metrics", "error", err)
	}

	if err := db.RunMigrations(ctx, app.db, Models()...); err != nil {
		app.closeResources(ctx)
		return nil, err
	}

	app.publisher, err = events.New(cfg.Events, slogLogger, appMetrics)
	if err != nil {
		app.closeResources(ctx)
		return nil, err
	}
	slogLogger.Info("events publisher ready", "driver", cfg.Events.Driver)

	studentRepo := student.NewRepository(app.db, appMetrics)
	studentService := student.NewService(studentRepo, app.publisher, slogLogger)

	attendanceRepo := attendance.NewRepository(app.db, appMetrics)
	attendanceService := attendance.NewService(attendanceRepo, studentService, app.publisher, slogLogger)

	examRepo := exam.NewRepository(app.db, appMetrics)
	examService := exam.NewService(examRepo, app.publisher, slogLogger)

	app.router = NewRouter(cfg.Server, slogLogger, serverMetrics,
		health.NewHandler(app.db, slogLogger),
		student.NewHandler(studentService, slogLogger, appMetrics),
		attendance.NewHandler(attendanceService, slogLogger, appMetrics),
		exam.NewHandler(examService, slogLogger, appMetrics),
	)

	if cfg.Grpc.Port != "" {
		app.grpcServer = grpc.NewServer(grpc.UnaryInterceptor(serverMetrics.UnaryServerInterceptor()))
		app.healthServer = grpchealth.NewServer()
		grpc_health_v1.RegisterHealthServer(app.grpcServer, app.healthServer)
		app.healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		app.healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	}

	slogLogger.Info("application initialized successfully")

	return app, nil
}

// NewRouter applies the shared middleware stack and mounts handlers at the
// root.
func NewRouter(cfg config.ServerConfig, logger *slog.Logger, serverMetrics *metrics.ServerMetrics, handlers ...RouteRegistrar) chi.Router {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(serverMetrics.Middleware)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.CORS(cfg.CORSOrigins))

	for _, h := range handlers {
		h.RegisterRoutes(router)
	}

	logger.Debug("routes registered", "handlers", len(handlers))
	return router
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	if a.grpcServer != nil {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%s", a.config.Grpc.Port))
		if err != nil {
			return fmt.Errorf("failed to listen on gRPC port: %w", err)
		}
		go func() {
			a.logger.Info("gRPC health server starting", "port", a.config.Grpc.Port)
			if err := a.grpcServer.Serve(lis); err != nil {
				a.logger.Error("gRPC server error", "error", err)
			}
		}()
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	if a.healthServer != nil {
		a.healthServer.Shutdown()
	}

	var err error
	if a.server != nil {
		err = a.server.Shutdown(ctx)
	}

	if a.grpcServer != nil {
		a.grpcServer.GracefulStop()
	}

	a.closeResources(ctx)
	return err
}

func (a *App) closeResources(ctx context.Context) {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("events publisher close error", "error", err)
		}
	}

	db.Close(a.db)

	if err := telemetry.Shutdown(ctx, a.meterProvider, a.logger); err != nil {
		a.logger.Error("telemetry shutdown error", "error", err)
	}
}
