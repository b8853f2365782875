package http

import (
	"context"
	"errors"
	"time"

	"FPKProgress/internal/config"
	"FPKProgress/internal/initial"
	jwtMiddleware "FPKProgress/internal/middleware/jwt"
	activityService "FPKProgress/internal/modules/activity/application/service"
	activityPersistence "FPKProgress/internal/modules/activity/infrastructure/persistence"
	activityHandler "FPKProgress/internal/modules/activity/interface/http"
	goalService "FPKProgress/internal/modules/goal/application/service"
	goalRepository "FPKProgress/internal/modules/goal/domain/repository"
	"FPKProgress/internal/modules/goal/infrastructure/coach"
	goalPersistence "FPKProgress/internal/modules/goal/infrastructure/persistence"
	"FPKProgress/internal/modules/goal/infrastructure/source"
	goalHandler "FPKProgress/internal/modules/goal/interface/http"
	"FPKProgress/internal/modules/goal/interface/scheduler"
	notificationService "FPKProgress/internal/modules/notification/application/service"
	notificationRepository "FPKProgress/internal/modules/notification/domain/repository"
	"FPKProgress/internal/modules/notification/infrastructure/mq/kafka"
	notificationPersistence "FPKProgress/internal/modules/notification/infrastructure/persistence"
	"FPKProgress/internal/modules/notification/infrastructure/queue"
	notificationHandler "FPKProgress/internal/modules/notification/interface/http"
	notificationWs "FPKProgress/internal/modules/notification/interface/websocket"
	xpService "FPKProgress/internal/modules/xp/application/service"
	xpEntity "FPKProgress/internal/modules/xp/domain/entity"
	xpRepository "FPKProgress/internal/modules/xp/domain/repository"
	"FPKProgress/internal/modules/xp/infrastructure/backfill"
	"FPKProgress/internal/modules/xp/infrastructure/lock"
	xpPersistence "FPKProgress/internal/modules/xp/infrastructure/persistence"
	xpHandler "FPKProgress/internal/modules/xp/interface/http"
	"FPKProgress/pkg/ssl"
	"FPKProgress/pkg/ws"
	"FPKProgress/pkg/zlog"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var GE *gin.Engine

// Background 由 main 启停的后台任务，未配置 kafka 时 Relay 与 Push 为 nil
var Background struct {
	Relay     *queue.OutboxRelay
	Push      *queue.PushWorker
	Scheduler *scheduler.Scheduler
}

func init() {
	conf := config.GetConfig()

	GE = gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	GE.Use(cors.New(corsConfig))
	if conf.MainConfig.ForceTLS {
		GE.Use(ssl.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))
	}

	db := initial.GormDB
	wsHub := ws.NewHub()
	topic := conf.KafkaConfig.NotificationTopic

	// notification
	notificationRepo := notificationPersistence.NewNotificationRepository(db)
	notificationSvc := notificationService.NewNotificationService(notificationRepo)
	setupDelivery(conf.KafkaConfig, notificationPersistence.NewOutboxRepository(db), wsHub)

	// activity 仓储同时作为 xp 回填与进度聚合的数据来源
	studyRepo := activityPersistence.NewStudySessionRepository(db)
	readingRepo := activityPersistence.NewReadingSessionRepository(db)
	flashcardRepo := activityPersistence.NewFlashcardRepository(db)
	noteRepo := activityPersistence.NewNoteRepository(db)
	uploadRepo := activityPersistence.NewFileUploadRepository(db)

	// goal
	goalRepo := goalPersistence.NewGoalRepository(db)
	goalUow := goalPersistence.NewGoalUnitOfWork(db, topic)
	sources := []goalService.ActivitySource{
		source.NewReadingSource(readingRepo, conf.ProgressConfig.ReadingTargetMinutes),
		source.NewStudySource(studyRepo, conf.ProgressConfig.StudyTargetMinutes),
	}
	progressOpts := goalService.ProgressOptions{
		Window:      time.Duration(conf.ProgressConfig.WindowDays) * 24 * time.Hour,
		MaxAttempts: conf.ProgressConfig.MaxCASRetries,
	}
	progressSvc := goalService.NewProgressService(goalRepo, goalUow, sources, progressOpts)
	goalSvc := goalService.NewGoalService(goalRepo, goalUow, progressSvc, progressOpts)
	coachSvc := goalService.NewCoachService(goalRepo, sources, newCoach(conf.AIConfig.ChatModel), progressOpts)

	sched, err := scheduler.NewScheduler(progressSvc, conf.ProgressConfig.RecomputeCron, conf.ProgressConfig.OverdueCron)
	if err != nil {
		zlog.Fatal("scheduler init failed", zap.Error(err))
	}
	Background.Scheduler = sched

	// xp：自然经验每次单独开事务，升级通知随事务写入
	xpUow := xpPersistence.NewXPUnitOfWork(db, func(tx *gorm.DB) xpRepository.LevelUpNotifier {
		return notificationService.NewFanout(notificationPersistence.NewNotificationRepository(tx), topic)
	})
	xpStores := xpPersistence.NewXPStores(db)
	if err := xpStores.Badges.EnsureCatalog(context.Background(), xpEntity.DefaultBadges()); err != nil {
		zlog.Warn("badge catalog seed failed", zap.Error(err))
	}
	xpSvc := xpService.NewXPService(
		xpStores,
		xpUow,
		xpPersistence.NewBackfillJobRepository(db),
		backfill.Sources(flashcardRepo, studyRepo, noteRepo, goalRepo, readingRepo, uploadRepo),
		lock.NewRedisLocker(),
		xpService.Options{
			LockTTL:          time.Duration(conf.XPConfig.BackfillLockSeconds) * time.Second,
			LeaderboardLimit: conf.XPConfig.LeaderboardLimit,
		},
	)

	activitySvc := activityService.NewActivityService(studyRepo, readingRepo, flashcardRepo, noteRepo, uploadRepo, xpService.NewAwarder(xpUow),
		func(ctx context.Context, userID string) error {
			_, err := progressSvc.RecomputeUser(ctx, userID)
			return err
		})

	goalH := goalHandler.NewGoalHandler(goalSvc, coachSvc)
	activityH := activityHandler.NewActivityHandler(activitySvc)
	xpH := xpHandler.NewXPHandler(xpSvc)
	notificationH := notificationHandler.NewNotificationHandler(notificationSvc)
	pushH := notificationWs.NewPushWsHandler(wsHub)

	GE.GET("/wss", pushH.Connect)

	authed := GE.Group("/")
	authed.Use(jwtMiddleware.Auth())
	authed.POST("/goal/create", goalH.Create)
	authed.POST("/goal/list", goalH.List)
	authed.POST("/goal/get", goalH.Get)
	authed.POST("/goal/update", goalH.Update)
	authed.POST("/goal/complete", goalH.Complete)
	authed.POST("/goal/recompute", goalH.Recompute)
	authed.POST("/goal/coach", goalH.Coach)
	authed.POST("/activity/studySession", activityH.LogStudySession)
	authed.POST("/activity/readingSession", activityH.LogReadingSession)
	authed.POST("/activity/flashcard", activityH.CreateFlashcard)
	authed.POST("/activity/note", activityH.CreateNote)
	authed.POST("/activity/fileUpload", activityH.RegisterFileUpload)
	authed.POST("/xp/stats", xpH.Stats)
	authed.POST("/xp/leaderboard", xpH.Leaderboard)
	authed.POST("/xp/backfill", xpH.Backfill)
	authed.POST("/xp/backfillAll", xpH.BackfillAll)
	authed.POST("/xp/rollback", xpH.Rollback)
	authed.POST("/xp/report", xpH.Report)
	authed.POST("/xp/backfillJob", xpH.BackfillJob)
	authed.POST("/notification/list", notificationH.List)
	authed.POST("/notification/unreadCount", notificationH.UnreadCount)
	authed.POST("/notification/markRead", notificationH.MarkRead)
	authed.POST("/notification/markAllRead", notificationH.MarkAllRead)
}

// setupDelivery 搭建 outbox -> kafka -> websocket 投递链路，任何一步失败都只影响实时推送
func setupDelivery(conf config.KafkaConfig, outbox notificationRepository.OutboxRepository, hub *ws.Hub) {
	opts := kafka.OptionsFromConfig(conf)
	if !opts.Enabled() {
		zlog.Info("kafka not configured, notifications are stored only")
		return
	}
	if err := kafka.EnsureTopic(opts, conf.NotificationTopic, conf.Partitions, conf.Replication); err != nil {
		zlog.Warn("ensure notification topic failed", zap.String("topic", conf.NotificationTopic), zap.Error(err))
	}
	pub, err := kafka.NewPublisher(opts)
	if err != nil {
		zlog.Error("kafka publisher init failed", zap.Error(err))
		return
	}
	Background.Relay = queue.NewOutboxRelay(outbox, pub, conf.NotificationTopic, conf.RelayBatchSize,
		time.Duration(conf.RelayPollMillis)*time.Millisecond)

	consumer, err := kafka.NewConsumer(opts, conf.ConsumerGroupID, conf.NotificationTopic)
	if err != nil {
		zlog.Error("kafka consumer init failed", zap.Error(err))
		return
	}
	Background.Push = queue.NewPushWorker(consumer, hub)
}

// newCoach 未配置模型时返回 nil，/goal/coach 随之返回 503
func newCoach(conf config.AIChatModelConfig) goalRepository.Coach {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c, err := coach.NewFromConfig(ctx, conf)
	if err != nil {
		if errors.Is(err, coach.ErrDisabled) {
			zlog.Info("progress coach disabled")
		} else {
			zlog.Warn("progress coach init failed", zap.String("provider", conf.Provider), zap.Error(err))
		}
		return nil
	}
	return c
}
