package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kasuganosora/rpgcore/server/api"
	"github.com/kasuganosora/rpgcore/server/api/sse"
	"github.com/kasuganosora/rpgcore/server/audit"
	"github.com/kasuganosora/rpgcore/server/cache"
	"github.com/kasuganosora/rpgcore/server/config"
	dbadapter "github.com/kasuganosora/rpgcore/server/db"
	"github.com/kasuganosora/rpgcore/server/game/control"
	"github.com/kasuganosora/rpgcore/server/game/saving"
	"github.com/kasuganosora/rpgcore/server/game/world"
	"github.com/kasuganosora/rpgcore/server/model"
	"github.com/kasuganosora/rpgcore/server/plugin/hook"
	"github.com/kasuganosora/rpgcore/server/resource"
	"github.com/kasuganosora/rpgcore/server/scheduler"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	if cfg.Server.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Security.AdminKeyHash == "" {
		logger.Warn("security.admin_key_hash is not set; no operator tokens can be issued")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	if err := model.AutoMigrate(db); err != nil {
		logger.Fatal("db migrate failed", zap.Error(err))
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig(cfg.Cache)
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		logger.Fatal("cache init failed", zap.Error(err))
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		logger.Fatal("pubsub init failed", zap.Error(err))
	}
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Resources ----
	res := resource.NewLoader(cfg.Data.Path)
	if err := res.Load(); err != nil {
		logger.Fatal("resource load failed", zap.String("path", cfg.Data.Path), zap.Error(err))
	}
	logger.Info("resources loaded",
		zap.Int("weapons", len(res.Weapons)),
		zap.Int("classes", len(res.Progression.Classes)),
		zap.Int("actors", len(res.Scene.Actors)),
	)

	// ---- Hooks ----
	hooks := hook.NewHookCenter()
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())
	auditSvc.Attach(hooks)
	publisher := sse.NewPublisher(pubsub, logger)
	defer publisher.Stop()
	publisher.Attach(hooks)

	// ---- World ----
	w, err := world.New(res, world.Config{
		TickInterval:        cfg.Game.TickInterval(),
		PercentageModifiers: cfg.Game.PercentageModifiers,
		RegenPercent:        cfg.Game.RegenPercent,
		MaxSpeed:            cfg.Game.MaxSpeed,
		MaxPathLength:       cfg.Game.MaxPathLength,
		HitDelay:            cfg.Game.HitDelay,
		EffectLifetime:      cfg.Game.EffectLifetime,
		DefaultWeapon:       cfg.Game.DefaultWeapon,
		AI:                  control.Settings(cfg.AI),
	}, hooks, logger)
	if err != nil {
		logger.Fatal("world init failed", zap.Error(err))
	}

	// ---- Saving ----
	var store saving.Store
	switch cfg.Saving.Store {
	case "cache":
		store = saving.NewCacheStore(c)
	case "db":
		store = saving.NewDBStore(db)
	default:
		logger.Fatal("unknown saving.store", zap.String("store", cfg.Saving.Store))
	}
	saves := saving.NewSystem(store, logger)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	if cfg.Saving.AutosaveInterval > 0 {
		slot := cfg.Saving.DefaultSlot
		sched.AddTicker("autosave", cfg.Saving.AutosaveInterval, func(ctx context.Context) error {
			n, err := saves.Save(ctx, slot, w)
			e := audit.Entry{Action: audit.ActionSave, Slot: slot, SimTime: w.Now(), Detail: map[string]any{"autosave": true, "actors": n}}
			if err != nil {
				e.Error = err.Error()
			}
			auditSvc.Log(e)
			return err
		})
	}

	// ---- HTTP ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := api.NewRouter(api.Deps{
		World:    w,
		Weapons:  res,
		Saves:    saves,
		Audit:    auditSvc,
		Cache:    c,
		PubSub:   pubsub,
		Sched:    sched,
		Security: cfg.Security,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("router init failed", zap.Error(err))
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go w.Run(ctx)
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	w.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if cfg.Saving.AutosaveInterval > 0 {
		if _, err := saves.Save(shutdownCtx, cfg.Saving.DefaultSlot, w); err != nil {
			logger.Warn("final save failed", zap.Error(err))
		}
	}
}
