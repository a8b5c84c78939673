package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talent_match_backend/internal/config"
	"talent_match_backend/internal/controller"
	"talent_match_backend/internal/repository"
	"talent_match_backend/internal/scheduler"
	"talent_match_backend/internal/service"
	"talent_match_backend/pkg/configwatcher"
	"talent_match_backend/pkg/database"
	"talent_match_backend/pkg/logger"
	"talent_match_backend/pkg/monitoring"
	"talent_match_backend/pkg/security"
	"talent_match_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const configDir = "configs"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	scheduler       *scheduler.ReminderScheduler
	tracer          *sdktrace.TracerProvider
	stopWatch       context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	job          *repository.JobRepository
	application  *repository.ApplicationRepository
	test         *repository.TestRepository
	interview    *repository.InterviewRepository
	notification *repository.NotificationRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	user         *service.UserService
	job          *service.JobService
	application  *service.ApplicationService
	test         *service.TestService
	interview    *service.InterviewService
	reminder     *service.ReminderService
	notification *service.NotificationService
	notifier     service.NotificationSender
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	job          *controller.JobController
	application  *controller.ApplicationController
	test         *controller.TestController
	interview    *controller.InterviewController
	notification *controller.NotificationController
	cron         *controller.CronController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		job:          repository.NewJobRepository(db),
		application:  repository.NewApplicationRepository(db),
		test:         repository.NewTestRepository(db),
		interview:    repository.NewInterviewRepository(db),
		notification: repository.NewNotificationRepository(db),
	}
}

// buildNotifier 按配置组装投递渠道，push 依赖 Redis
func buildNotifier(cfg *config.Config, repos *repositories, rdb *redis.Client) service.NotificationSender {
	channels := []service.Channel{
		&service.InAppChannel{Repo: repos.notification},
		&service.EmailChannel{},
	}
	if rdb != nil {
		channels = append(channels, &service.PushChannel{Redis: rdb})
	}
	return service.NewMultiChannelNotifier(cfg.Notification.Channels, channels...)
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.notifier = buildNotifier(cfg, repos, rdb)
	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, s.storage)
	s.job = service.NewJobService(repos.job)
	s.application = service.NewApplicationService(repos.application, repos.job, repos.user, s.notifier)
	s.test = service.NewTestService(db, repos.test, repos.application, repos.user, s.notifier, cfg)
	s.interview = service.NewInterviewService(db, repos.interview, repos.application, repos.user, s.notifier, cfg)
	s.notification = service.NewNotificationService(repos.notification)

	var locker service.SweepLocker
	if rdb != nil {
		locker = &service.RedisSweepLocker{Redis: rdb}
	}
	s.reminder = service.NewReminderService(repos.interview, s.notifier, locker,
		cfg.Cron.Secret, cfg.Cron.LockTTL(), cfg.Notification.AppBaseURL)

	// 共享密钥支持热更新
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		s.reminder.SetSecret(newCfg.Cron.Secret)
	})

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.user),
		job:          controller.NewJobController(s.job),
		application:  controller.NewApplicationController(s.application),
		test:         controller.NewTestController(s.test),
		interview:    controller.NewInterviewController(s.interview),
		notification: controller.NewNotificationController(s.notification),
		cron:         controller.NewCronController(s.reminder),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	if cfg.RateLimit.MaxRequests > 0 {
		window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	// 进程内调度与外部 cron 共用同一密钥
	a.scheduler = scheduler.NewReminderScheduler(s.reminder, cfg.Cron.SweepInterval(), s.reminder.CurrentSecret)
	a.scheduler.Start()

	ctx, cancel := context.WithCancel(context.Background())
	a.stopWatch = cancel
	go configwatcher.WatchConfig(ctx, configDir+"/config.yaml", a.applyConfig)
}

func migrate(db *gorm.DB, cfg *config.Config) {
	if err := database.AutoMigrate(db); err != nil {
		logger.Log.Fatal("Failed to migrate database", zap.Error(err))
	}
	if err := database.SeedOnboardingTest(db, cfg.Tests.OnboardingSeedFile, cfg.Tests.DefaultPassingScore); err != nil {
		logger.Log.Error("Failed to seed onboarding test", zap.Error(err))
	}
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	logLevel := gormlogger.Warn
	if cfg.Server.Mode == "debug" {
		logLevel = gormlogger.Info
	}
	db, err := database.InitDB(&cfg.Database, logLevel)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// release 模式默认不迁移，需显式 -migrate
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		migrate(db, cfg)
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}
	app.Redis = rdb

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("talent-match", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.stopWatch != nil {
		a.stopWatch()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
