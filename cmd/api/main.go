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

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-gin-shop-api/internal/core/auth"
	"go-gin-shop-api/internal/core/cache"
	"go-gin-shop-api/internal/core/config"
	"go-gin-shop-api/internal/core/logger"
	"go-gin-shop-api/internal/core/mailer"
	"go-gin-shop-api/internal/core/scheduler"
	"go-gin-shop-api/internal/core/server"
	"go-gin-shop-api/internal/feature/product"
	"go-gin-shop-api/internal/feature/user"
	"go-gin-shop-api/internal/repo"
	"go-gin-shop-api/internal/transport/http/handler"
	"go-gin-shop-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, cleanup := logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON,
		cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays, cfg.Log.Compress)
	defer cleanup()
	undo := logger.RedirectStdLog(log, zapcore.InfoLevel)
	defer undo()

	// 存储（失败直接 Fatal）
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := repo.Open(ctx, cfg.DB, log)
	cancel()
	if err != nil {
		log.Fatal("store open", zap.String("driver", cfg.DB.Driver), zap.Error(err))
	}
	log.Info("store ready", zap.String("driver", store.Driver))

	// JWT
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL(),
		Leeway: cfg.JWT.Leeway(),
	}
	for _, s := range cfg.JWT.PreviousSecrets {
		jwter.PreviousSecrets = append(jwter.PreviousSecrets, []byte(s))
	}

	// 缓存可选：没配 redis 就直接走库
	var pc *cache.Cache
	if cfg.Redis.Addr != "" {
		pc = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := pc.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable, product reads go to the store", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
	}

	accounts := user.NewService(store.Users, jwter, log)
	products := product.NewService(store.Products, pc, time.Duration(cfg.Redis.ProductTTLSec)*time.Second, log)
	mail := mailer.NewSMTP(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password)
	if mail.From == "" {
		log.Warn("mail.username not set, /api/deliver will fail")
	}

	r := router.NewAPIEngine(router.Deps{
		Log:      log,
		HTTP:     cfg.App.HTTP,
		Verifier: jwter,
		Users:    store.Users,
		Modules: []router.APIModule{
			handler.NewUserHandler(accounts, log),
			handler.NewProductHandler(products, log),
			handler.NewMailHandler(mail, log),
		},
	})

	// 定时任务
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(log)
		spec := cfg.Scheduler.HeartbeatSpec
		if spec == "" {
			spec = scheduler.DefaultHeartbeatSpec
		}
		if err := sched.Add("heartbeat", spec, scheduler.Heartbeat(log)); err != nil {
			log.Fatal("scheduler", zap.Error(err))
		}
		sched.Start()
	}

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
		logger.ToStdLogger(log.Named("http"), zapcore.WarnLevel),
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("shop api starting",
		zap.String("env", cfg.App.Env),
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("shop api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if sched != nil {
		if err := sched.Stop(ctx); err != nil {
			log.Warn("scheduler stop", zap.Error(err))
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := store.Close(ctx); err != nil {
		log.Warn("store close", zap.Error(err))
	}
	if pc != nil {
		_ = pc.Close()
	}
	log.Info("shop api stopped gracefully")
}
