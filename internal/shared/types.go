package shared

// Asynq queues
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// Task types
const (
	TypeNotifyNewChapter     = "chapter:notify_new"
	TypeProcessCover         = "media:process_cover"
	TypeDriveImport          = "gdrive:import"
	TypeSubscriptionRenew    = "subscription:renew_or_expire"
	TypeFlushViews           = "analytics:flush_views"
	TypeCleanupNotifications = "notification:cleanup_old"
	TypeDeleteNovelAssets    = "media:delete_novel_assets"
)

// TaskQueues map task type → queue, client dùng để route khi enqueue
var TaskQueues = map[string]string{
	TypeNotifyNewChapter:     QueueDefault,
	TypeProcessCover:         QueueDefault,
	TypeDriveImport:          QueueDefault,
	TypeSubscriptionRenew:    QueueCritical,
	TypeFlushViews:           QueueLow,
	TypeCleanupNotifications: QueueLow,
	TypeDeleteNovelAssets:    QueueLow,
}

// NotifyNewChapterPayload fan-out thông báo chapter mới tới người bookmark novel
type NotifyNewChapterPayload struct {
	NovelID   string `json:"novel_id"`
	ChapterID string `json:"chapter_id"`
}

// ProcessCoverPayload tạo các variant cho cover vừa upload
type ProcessCoverPayload struct {
	NovelID     string `json:"novel_id"`
	OriginalKey string `json:"original_key"`
}

type DeleteNovelAssetsPayload struct {
	NovelID string `json:"novel_id"`
}

type DriveImportPayload struct {
	JobID string `json:"job_id"`
}

type CleanupNotificationsPayload struct {
	Days int `json:"days"`
}
