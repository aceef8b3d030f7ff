package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	"github.com/enrichman/httpgrace"
	"github.com/gin-gonic/gin"

	"github.com/davoli/staticms/internal/api/middleware"
	route "github.com/davoli/staticms/internal/api/route"
	appctx "github.com/davoli/staticms/internal/app"
	"github.com/davoli/staticms/internal/config"
	"github.com/davoli/staticms/internal/logger"
	"github.com/davoli/staticms/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithComponent("main").Fatalf("configuration error: %v", err)
	}

	logger.SetLevelFromString(cfg.Misc.LogLevel)
	logger.WithComponent("main").Infof("content server will run on port: %d", cfg.Server.Port)

	manager, err := store.NewManager(cfg.Storage)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init storage: %v", err)
	}

	app, err := appctx.New(cfg, manager)
	if err != nil {
		logger.WithComponent("main").Fatalf("cannot init app: %v", err)
	}
	defer app.Shutdown()

	if err := app.InitStorage(); err != nil {
		logger.WithComponent("main").Fatalf("cannot init storage backend: %v", err)
	}

	gin.SetMode(cfg.Misc.GinMode)
	gin.DefaultWriter = logger.Logger.Writer()
	gin.DefaultErrorWriter = logger.Logger.Writer()

	r := gin.New()
	r.Use(middleware.HoneybadgerMiddleware(logger.Logger))
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware(cfg.Server.CORSAllowedOrigins))

	route.SetupRoutes(r, app)

	srv := createGraceHTTPServer(app.BaseCtx, cfg.Server, r)
	if err := srv.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithComponent("main").Fatal(err)
	}
}

func createGraceHTTPServer(ctx context.Context, serverConfig config.ServerConfig, r *gin.Engine) *httpgrace.Server {
	slogLogger := slog.New(slog.NewTextHandler(logger.Logger.Writer(), nil))

	return httpgrace.NewServer(r,
		httpgrace.WithTimeout(serverConfig.ShutDownTimeout),
		httpgrace.WithSignals(syscall.SIGTERM, syscall.SIGINT),
		httpgrace.WithLogger(slogLogger),
		httpgrace.WithBeforeShutdown(func() {
			logger.WithComponent("http").Info("Shutting down content server....")
		}),
		httpgrace.WithServerOptions(
			httpgrace.WithReadTimeout(serverConfig.ReadTimeout),
			httpgrace.WithWriteTimeout(serverConfig.WriteTimeout),
			httpgrace.WithIdleTimeout(serverConfig.IdleTimeout),
			func(srv *http.Server) {
				srv.BaseContext = func(_ net.Listener) context.Context {
					return ctx
				}
			},
			func(srv *http.Server) {
				srv.ErrorLog = log.New(logger.Logger.Writer(), "[content-server] ", log.LstdFlags)
			},
		),
	)
}
