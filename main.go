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
	apirest "github.com/kasuganosora/mmoitems/api/rest"
	"github.com/kasuganosora/mmoitems/api/ws"
	"github.com/kasuganosora/mmoitems/audit"
	"github.com/kasuganosora/mmoitems/cache"
	"github.com/kasuganosora/mmoitems/config"
	dbadapter "github.com/kasuganosora/mmoitems/db"
	"github.com/kasuganosora/mmoitems/game/item"
	"github.com/kasuganosora/mmoitems/game/player"
	"github.com/kasuganosora/mmoitems/game/script"
	mw "github.com/kasuganosora/mmoitems/middleware"
	"github.com/kasuganosora/mmoitems/model"
	"github.com/kasuganosora/mmoitems/plugin/hook"
	"github.com/kasuganosora/mmoitems/resource"
	"github.com/kasuganosora/mmoitems/scheduler"
	"go.uber.org/zap"
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
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database, logger)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	auditSvc := audit.New(db, logger, audit.Options{
		BufferSize:    cfg.Audit.BufferSize,
		BatchSize:     cfg.Audit.BatchSize,
		FlushInterval: cfg.Audit.FlushInterval,
	})
	defer auditSvc.Stop(context.Background())

	// ---- Cache ----
	c, err := cache.NewCache(cfg.Cache)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	defer c.Close()
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Item catalog ----
	catalog := resource.NewLoader(cfg.Catalog.DataPath)
	if err := catalog.Load(); err != nil {
		log.Fatalf("catalog: %v", err)
	}
	logger.Info("Item catalog loaded", zap.Int("templates", catalog.Len()))

	// ---- Gear score ----
	formula, err := newScoreEvaluator(cfg.Script, logger)
	if err != nil {
		log.Fatalf("gear score: %v", err)
	}
	scores := script.NewMemoEvaluator(formula, cfg.Script.MemoSize, cfg.Script.MemoTTL, c, logger)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	sm := player.NewSessionManager(logger)
	defer sm.CloseAllSessions()

	sched.AddTicker("runtime_stats", 5*time.Minute, func() {
		logger.Info("runtime stats",
			zap.Int("online", sm.Count()),
			zap.Int("pending_fades", sched.Pending()),
			zap.Int("gear_score_memo", scores.Len()),
			zap.Int64("audit_dropped", auditSvc.Dropped()))
	})

	// ---- Hooks ----
	hooks := hook.NewCenter[item.HookEvent]()
	for _, event := range []string{hook.AfterItemCreate, hook.AfterItemSplit, hook.AfterItemBind, hook.AfterItemEnchant, hook.AfterItemLimitBreak, hook.AfterItemEquip, hook.AfterItemUnequip, hook.OnItemFade} {
		hooks.Register(event, 100, "debug_log", func(_ context.Context, event string, ev item.HookEvent) (item.HookEvent, error) {
			logger.Debug("item hook", zap.String("event", event), zap.Int64("uid", ev.Item.UID), zap.Int("item_id", ev.Item.ID))
			return ev, nil
		})
	}

	// ---- Services ----
	itemSvc := item.NewService(item.Options{
		Catalog:      catalog,
		Store:        item.NewStore(db, catalog),
		Scores:       scores,
		Auditor:      auditSvc,
		Hooks:        hooks,
		Scheduler:    sched,
		DropLifetime: cfg.Item.DropLifetime(),
		Logger:       logger,
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := mw.NewRateLimiter(cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst)
	defer limiter.Stop()

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger), limiter.Handler())

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "templates": catalog.Len()})
	})

	r.GET("/ws", ws.NewHandler(sm, cfg.Security, logger).ServeWS)

	api := r.Group("/api")
	apirest.NewItemHandler(itemSvc, sm, logger).Register(api)
	apirest.NewAuditHandler(auditSvc, logger).Register(api)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
}

// newScoreEvaluator builds the configured gear score engine.
func newScoreEvaluator(cfg config.ScriptConfig, logger *zap.Logger) (item.ScoreEvaluator, error) {
	switch cfg.Engine {
	case "", "js":
		return script.LoadGojaGearScore(cfg.FormulaFile, cfg.VMPoolSize, cfg.Timeout, logger)
	case "expr":
		return script.NewExprGearScore(cfg.ExprBase, cfg.ExprBonus)
	default:
		return nil, fmt.Errorf("unknown script engine %q", cfg.Engine)
	}
}
