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

	"github.com/gin-gonic/gin"
	"github.com/studyhive/server/api/rest"
	"github.com/studyhive/server/api/sse"
	"github.com/studyhive/server/audit"
	"github.com/studyhive/server/cache"
	"github.com/studyhive/server/chat"
	"github.com/studyhive/server/config"
	"github.com/studyhive/server/db"
	"github.com/studyhive/server/identity"
	mw "github.com/studyhive/server/middleware"
	"github.com/studyhive/server/model"
	"github.com/studyhive/server/presence"
	"github.com/studyhive/server/realtime"
	"github.com/studyhive/server/scheduler"
	"github.com/studyhive/server/social"
	"github.com/studyhive/server/stats"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Server.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	// Database
	gdb, err := db.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("database ready", zap.String("mode", cfg.Database.Mode))

	// Cache and pub/sub
	cacheCfg := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheCfg)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	ps, err := cache.NewPubSub(cacheCfg)
	if err != nil {
		return fmt.Errorf("init pubsub: %w", err)
	}
	if cfg.Cache.RedisAddr != "" {
		logger.Info("cache ready", zap.String("backend", "redis"), zap.String("addr", cfg.Cache.RedisAddr))
	} else {
		logger.Info("cache ready", zap.String("backend", "local"))
	}

	// Seed console account on first boot.
	if err := bootstrapAdmin(gdb, cfg.Admin, logger); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	// Services
	auditSvc := audit.New(gdb, logger)
	events := realtime.NewPublisher(ps, logger)
	resolver := identity.NewResolver(gdb)
	socialSvc := social.NewService(gdb, resolver, events, logger)
	presenceSvc := presence.NewService(gdb, resolver, events, logger)
	chatSvc := chat.NewService(gdb, c, resolver, events, cfg.App, logger)
	statsSvc := stats.NewService(gdb, c, cfg.App.StatsCacheTTL, logger)

	// Background tasks
	sched := scheduler.New(logger)
	refreshEvery := time.Duration(cfg.App.StatsRefreshEveryS) * time.Second
	if refreshEvery <= 0 {
		refreshEvery = 5 * time.Minute
	}
	sched.AddTicker("stats-refresh", refreshEvery, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := statsSvc.Refresh(ctx); err != nil {
			logger.Warn("stats refresh failed", zap.Error(err))
		}
	})

	// HTTP
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		mw.TraceID(),
		mw.Logger(logger),
		mw.Recovery(logger),
		mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst, cfg.Security.RateLimitIdleTTL),
	)

	registerRoutes(engine, gdb, c, ps, cfg, socialSvc, presenceSvc, chatSvc, statsSvc, auditSvc, sched, logger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	sched.Stop()
	auditSvc.Stop(ctx)
	logger.Info("bye")
	return nil
}

func registerRoutes(
	engine *gin.Engine,
	gdb *gorm.DB,
	c cache.Cache,
	ps cache.PubSub,
	cfg *config.Config,
	socialSvc *social.Service,
	presenceSvc *presence.Service,
	chatSvc *chat.Service,
	statsSvc *stats.Service,
	auditSvc *audit.Service,
	sched *scheduler.Scheduler,
	logger *zap.Logger,
) {
	authH := rest.NewAuthHandler(gdb, c, cfg.Security, logger)
	socialH := rest.NewSocialHandler(socialSvc)
	presenceH := rest.NewPresenceHandler(presenceSvc)
	chatH := rest.NewChatHandler(chatSvc)
	plannerH := rest.NewPlannerHandler(gdb)
	notesH := rest.NewNotesHandler(gdb)
	settingsH := rest.NewSettingsHandler(gdb)
	notifH := rest.NewNotificationsHandler(gdb, cfg.App)
	complaintsH := rest.NewComplaintsHandler(gdb)
	adminH := rest.NewAdminHandler(gdb, c, cfg.Security, statsSvc, auditSvc, logger)
	sseH := sse.NewHandler(ps, c, cfg.Security, logger)

	engine.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})

	api := engine.Group("/api")

	// Public
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)
	api.POST("/complaints", complaintsH.Submit)
	api.POST("/admin/login", adminH.Login)

	// Authenticated user routes
	user := api.Group("", mw.Auth(cfg.Security, c))
	{
		user.POST("/auth/logout", authH.Logout)
		user.POST("/auth/refresh", authH.Refresh)
		user.GET("/auth/me", authH.Me)

		user.GET("/friends", socialH.ListFriends)
		user.DELETE("/friends/:id", socialH.RemoveFriend)
		user.GET("/friends/requests", socialH.ListRequests)
		user.POST("/friends/requests", socialH.SendRequest)
		user.POST("/friends/requests/:id/accept", socialH.AcceptRequest)
		user.POST("/friends/requests/:id/reject", socialH.RejectRequest)

		user.GET("/presence", presenceH.List)
		user.PUT("/presence", presenceH.SetStatus)

		user.GET("/chat/messages", chatH.History)
		user.POST("/chat/messages", chatH.Post)

		user.GET("/tasks", plannerH.ListTasks)
		user.POST("/tasks", plannerH.CreateTask)
		user.POST("/tasks/:id/toggle", plannerH.ToggleTask)
		user.DELETE("/tasks/:id", plannerH.DeleteTask)
		user.GET("/exams", plannerH.ListExams)
		user.POST("/exams", plannerH.CreateExam)
		user.DELETE("/exams/:id", plannerH.DeleteExam)

		user.GET("/notes", notesH.List)
		user.POST("/notes", notesH.Create)
		user.PUT("/notes/:id", notesH.Update)
		user.DELETE("/notes/:id", notesH.Delete)

		user.GET("/settings/timer", settingsH.GetTimer)
		user.PUT("/settings/timer", settingsH.UpdateTimer)
		user.GET("/settings/preferences", settingsH.GetPreferences)
		user.PUT("/settings/preferences", settingsH.UpdatePreferences)

		user.GET("/notifications", notifH.List)
		user.POST("/notifications/:id/read", notifH.MarkRead)
		user.POST("/notifications/read-all", notifH.MarkAllRead)
		user.DELETE("/notifications/:id", notifH.Delete)
	}

	// Console routes. Moderators get read/reply surfaces; account management
	// stays admin-only.
	console := api.Group("/admin", mw.RequireRole(cfg.Security, c, mw.RoleAdmin, mw.RoleModerator))
	{
		console.GET("/statistics", adminH.Statistics)
		console.GET("/users", adminH.ListUsers)
		console.POST("/users/:id/reset-password", adminH.ResetUserPassword)
		console.POST("/password", adminH.ChangePassword)
		console.GET("/complaints", adminH.ListComplaints)
		console.POST("/complaints/:id/reply", adminH.ReplyComplaint)
	}
	adminOnly := api.Group("/admin", mw.RequireRole(cfg.Security, c, mw.RoleAdmin))
	{
		adminOnly.POST("/moderators", adminH.CreateModerator)
		adminOnly.GET("/roles", adminH.ListRoles)
		adminOnly.POST("/roles", adminH.AssignRole)
		adminOnly.GET("/scheduler", adminH.SchedulerTasks(sched.Names))
	}

	engine.GET("/sse", sseH.ServeSSE)
}

// bootstrapAdmin seeds the first console account when the table is empty and
// bootstrap credentials are configured.
func bootstrapAdmin(gdb *gorm.DB, cfg config.AdminConfig, logger *zap.Logger) error {
	if cfg.BootstrapID == "" || cfg.BootstrapPassword == "" {
		return nil
	}
	var count int64
	if err := gdb.Model(&model.AdminAccount{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.BootstrapPassword), 12)
	if err != nil {
		return err
	}
	acc := &model.AdminAccount{
		ID:           cfg.BootstrapID,
		Name:         cfg.BootstrapName,
		PasswordHash: string(hash),
		Role:         mw.RoleAdmin,
	}
	if err := gdb.Create(acc).Error; err != nil {
		return err
	}
	logger.Info("bootstrap admin account created", zap.String("id", cfg.BootstrapID))
	return nil
}
