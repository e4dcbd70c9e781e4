// @title           FormFlow Workspace API
// @version         1.0
// @description     Uploads documents to the extraction backend, tracks their progress and serves normalized results.

// @contact.name    API Support
// @contact.email   ank.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/FormFlow/internal/config"
	"github.com/akolanti/FormFlow/internal/customHttpClient"
	"github.com/akolanti/FormFlow/internal/data/redisStore"
	"github.com/akolanti/FormFlow/internal/data/store"
	"github.com/akolanti/FormFlow/internal/formsclient"
	"github.com/akolanti/FormFlow/internal/handlers"
	"github.com/akolanti/FormFlow/internal/poller"
	"github.com/akolanti/FormFlow/internal/server"
	"github.com/akolanti/FormFlow/internal/workspace"
	"github.com/akolanti/FormFlow/pkg/logger_i"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger_i.Init(config.LOG_LEVEL_PROD, false)
		logger_i.NewLogger("main").Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger_i.Init(cfg.Log.SlogLevel(), cfg.Log.JSON)
	var logger = logger_i.NewLogger("main")

	listenAddr := cfg.Server.ListenAddr
	flag.StringVar(&listenAddr, "listen-addr", listenAddr, "server listen address")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	redisStore.Configure(cfg.Redis.Addr, cfg.Redis.Password)

	client, err := formsclient.New(cfg.Backend.BaseURL, customHttpClient.NewClient(cfg.Backend.Timeout))
	if err != nil {
		logger.Error("Could not create forms client", "error", err)
		return
	}

	ticker := poller.JitterTicker(cfg.Poll.Jitter)
	serviceConfig := workspace.ServiceConfig{
		Client:      client,
		JobStore:    store.NewJobStore(serviceContext, cfg.Redis.Enabled),
		ResultCache: store.NewResultCache(serviceContext, cfg.Redis.Enabled),
		PollOptions: poller.Options{
			Interval:               cfg.Poll.Interval,
			MaxConsecutiveFailures: cfg.Poll.MaxConsecutiveFailures,
			FailOnClientError:      cfg.Poll.FailOnClientError,
			NewTicker:              ticker,
		},
		HistoryInterval: cfg.Poll.HistoryInterval,
		HistoryTicker:   ticker,
	}
	logger.Info("Starting workspace service", "backend", cfg.Backend.BaseURL, "redis", cfg.Redis.Enabled)
	service := workspace.InitWorkspaceService(serviceContext, serviceConfig)
	service.Start(serviceContext)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		StopWorkspace:    service.Shutdown,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, handlers.NewHandler(service))

	<-stopExecution
	logger.Info("Server stopped")
}
