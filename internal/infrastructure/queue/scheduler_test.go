package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub-backend/internal/config"
	"novelhub-backend/internal/shared"
)

func TestPeriodicJobs(t *testing.T) {
	jobs := PeriodicJobs(config.JobConfig{CleanupRetentionDays: 14, ViewFlushInterval: 5 * time.Minute})

	byType := map[string]PeriodicJob{}
	for _, j := range jobs {
		byType[j.TaskType] = j
	}

	require.Len(t, byType, 3)
	assert.Equal(t, "0 * * * *", byType[shared.TypeSubscriptionRenew].Cronspec)
	assert.Equal(t, "@every 5m0s", byType[shared.TypeFlushViews].Cronspec)
	assert.Equal(t, "0 3 * * *", byType[shared.TypeCleanupNotifications].Cronspec)
	assert.Equal(t, 14, byType[shared.TypeCleanupNotifications].Payload.(shared.CleanupNotificationsPayload).Days)
}

func TestNewTask_RoutesQueueAndPayload(t *testing.T) {
	task, err := NewTask(shared.TypeNotifyNewChapter, shared.NotifyNewChapterPayload{NovelID: "n", ChapterID: "c"})
	require.NoError(t, err)
	assert.Equal(t, shared.TypeNotifyNewChapter, task.Type())

	var p shared.NotifyNewChapterPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "c", p.ChapterID)

	_, err = NewTask("x", make(chan int))
	assert.Error(t, err)
}
