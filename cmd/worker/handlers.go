package main

import (
	"github.com/hibiken/asynq"

	analyticsJob "novelhub-backend/internal/domains/analytics/job"
	chapterJob "novelhub-backend/internal/domains/chapter/job"
	gdriveJob "novelhub-backend/internal/domains/gdrive/job"
	mediaJob "novelhub-backend/internal/domains/media/job"
	notificationJob "novelhub-backend/internal/domains/notification/job"
	subscriptionJob "novelhub-backend/internal/domains/subscription/job"
	"novelhub-backend/internal/shared"
	"novelhub-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Chapter / media
	notifyNewChapter  *chapterJob.NotifyNewChapterHandler
	processCover      *mediaJob.ProcessCoverHandler
	deleteNovelAssets *mediaJob.DeleteNovelAssetsHandler

	// Import
	driveImport *gdriveJob.DriveImportHandler

	// Periodic
	subscriptionRenew    *subscriptionJob.RenewOrExpireHandler
	flushViews           *analyticsJob.FlushViewsHandler
	cleanupNotifications *notificationJob.CleanupOldNotificationsHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		notifyNewChapter:  chapterJob.NewNotifyNewChapterHandler(c.ChapterService),
		processCover:      mediaJob.NewProcessCoverHandler(c.MediaService),
		deleteNovelAssets: mediaJob.NewDeleteNovelAssetsHandler(c.MediaService),

		driveImport: gdriveJob.NewDriveImportHandler(c.DriveService),

		subscriptionRenew:    subscriptionJob.NewRenewOrExpireHandler(c.SubscriptionService),
		flushViews:           analyticsJob.NewFlushViewsHandler(c.AnalyticsService),
		cleanupNotifications: notificationJob.NewCleanupOldNotificationsHandler(c.NotificationService, c.Config.Jobs),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeNotifyNewChapter, h.notifyNewChapter.ProcessTask)
	mux.HandleFunc(shared.TypeProcessCover, h.processCover.ProcessTask)
	mux.HandleFunc(shared.TypeDeleteNovelAssets, h.deleteNovelAssets.ProcessTask)

	mux.HandleFunc(shared.TypeDriveImport, h.driveImport.ProcessTask)

	mux.HandleFunc(shared.TypeSubscriptionRenew, h.subscriptionRenew.ProcessTask)
	mux.HandleFunc(shared.TypeFlushViews, h.flushViews.ProcessTask)
	mux.HandleFunc(shared.TypeCleanupNotifications, h.cleanupNotifications.ProcessTask)
}
