package main

import (
	"log"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"pingrelay/internal/config"
	"pingrelay/internal/db"
	"pingrelay/internal/discord"
	"pingrelay/internal/http/handlers"
	appmw "pingrelay/internal/http/middleware"
	"pingrelay/internal/logger"
	"pingrelay/internal/trigger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	zlog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	gdb, err := db.Connect(cfg)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}

	if err := db.EnsureBootstrapOwner(gdb, cfg); err != nil {
		zlog.Fatal("failed to ensure bootstrap owner", zap.Error(err))
	}

	db.StartMonitoringRetentionWorker(gdb, cfg.MonitoringRetentionDays, zlog)
	db.StartUsageWorker(gdb, zlog)

	handlers.InitMetrics()

	store := db.NewStore(gdb)
	notifier := discord.NewNotifier(store, discord.NewClient(cfg.DiscordBotToken), zlog)
	pipeline := trigger.New(store, store, store, notifier, zlog)

	r := router.New()

	r.GET("/healthz", handlers.Healthz(gdb))
	r.GET("/metrics", handlers.Metrics())
	r.POST("/api/v1/events", handlers.Trigger(pipeline))

	handler := appmw.RequestLogger(zlog)(r.Handler)

	zlog.Info("pingrelay listening", zap.String("addr", cfg.ListenAddr))
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
