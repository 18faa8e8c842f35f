package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	_ "github.com/d60-Lab/staffing-ats/docs"
	"github.com/d60-Lab/staffing-ats/internal/api/handler"
	"github.com/d60-Lab/staffing-ats/internal/config"
	"github.com/d60-Lab/staffing-ats/internal/mailer"
	"github.com/d60-Lab/staffing-ats/internal/model"
	"github.com/d60-Lab/staffing-ats/internal/repository"
	"github.com/d60-Lab/staffing-ats/internal/service"
	"github.com/d60-Lab/staffing-ats/internal/storage"
	"github.com/d60-Lab/staffing-ats/internal/telemetry"
	"github.com/d60-Lab/staffing-ats/pkg/logger"
)

// @title Staffing ATS API
// @version 1.0
// @description Sendout/sendover state engine and staffing dashboard API
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := telemetry.Init(cfg.Sentry.DSN, cfg.Sentry.Environment); err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer telemetry.Flush()

	ctx := context.Background()
	shutdownTracer, err := telemetry.InitTracer(ctx, "staffing-ats")
	if err != nil {
		logger.Warn("tracer init failed", zap.Error(err))
		shutdownTracer = func(context.Context) error { return nil }
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		logger.Error("open database", zap.Error(err))
		os.Exit(1)
	}
	if err := db.AutoMigrate(
		&model.User{}, &model.JobOrder{}, &model.Candidate{},
		&model.Sendout{}, &model.SendoutInterview{}, &model.SendoutEmailDetail{},
		&model.SendoutAttachment{}, &model.SendoutHasHiringAuthority{},
		&model.SendoutEventLog{}, &model.Placement{}, &model.Dig{}, &model.DomainOutbox{},
	); err != nil {
		logger.Error("migrate", zap.Error(err))
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	sendouts := repository.NewSendoutRepository(db)
	eventLogs := repository.NewEventLogRepository(db)
	jobOrders := repository.NewJobOrderRepository(db)
	candidates := repository.NewCandidateRepository(db)
	placements := repository.NewPlacementRepository(db)
	users := repository.NewUserRepository(db)
	digs := repository.NewDigRepository(db)
	outbox := repository.NewOutboxRepository(db)

	sender := mailer.NewEnvRouter(mailer.NewLogSender(), cfg.Mail.TestMode, cfg.Mail.FromAddress, cfg.Mail.TestBcc)
	composer := service.NewNotificationComposer(users, cfg.Mail.FromAddress, cfg.Mail.OperationsInbox)
	campaign := mailer.NewCampaign(sender, cfg.Mail.RatePerSecond, cfg.Mail.Burst)
	cal := service.NewBoardCalendar(cfg.Board.CutoffHour, cfg.Board.Holidays)
	reminders := service.NewReminderQueue(rdb)
	activity := service.NewActivityTracker(rdb)
	files := storage.NewLocalFileMover(cfg.Storage.Root)

	bus := service.NewEventBus(0)
	bus.Subscribe(service.NewReminderListener(sendouts, candidates, users, reminders))
	bus.Subscribe(service.NewOpsNoticeListener(sendouts, jobOrders, candidates, composer, sender))
	bus.Subscribe(service.NewActivityLogListener())
	stopBus := bus.Start(2)

	worker := service.NewOutboxWorker(outbox, bus, cfg.Outbox.Workers, cfg.Outbox.ClaimLimit, cfg.Outbox.PollInterval)
	stopWorker := worker.Start()

	sendoutSvc := service.NewSendoutService(
		db, sendouts, eventLogs, jobOrders, candidates, placements, users,
		cal, composer, sender, files, reminders,
	)
	summary := service.NewSummaryAggregator(sendouts)
	digest := service.NewCoachDigestService(users, sendouts, activity, composer, sender)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), gzip.Gzip(gzip.DefaultCompression), otelgin.Middleware("staffing-ats"))
	registerValidators()

	h := handler.New(sendoutSvc, summary, digest, activity, digs, users, campaign, cfg.JWT.Secret, cfg.JWT.TTL)
	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}
	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = stopWorker(shutdownCtx)
	_ = stopBus(shutdownCtx)
	_ = shutdownTracer(shutdownCtx)
	_ = rdb.Close()
}

func openDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	default:
		return gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{})
	}
}

// registerValidators 注册州代码校验（DIG 领地）
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("statecode", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != 2 {
			return false
		}
		return s[0] >= 'A' && s[0] <= 'Z' && s[1] >= 'A' && s[1] <= 'Z'
	})
}
