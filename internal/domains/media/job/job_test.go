package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelhub-backend/internal/shared"
)

type recorder struct {
	covers  []string
	deleted []uuid.UUID
	err     error
}

func (r *recorder) ProcessCover(_ context.Context, id uuid.UUID, key string) error {
	r.covers = append(r.covers, id.String()+"|"+key)
	return r.err
}

func (r *recorder) DeleteNovelAssets(_ context.Context, id uuid.UUID) error {
	r.deleted = append(r.deleted, id)
	return r.err
}

func task(t *testing.T, typ string, payload interface{}) *asynq.Task {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(typ, b)
}

func TestProcessCoverHandler(t *testing.T) {
	rec := &recorder{}
	h := NewProcessCoverHandler(rec)
	id := uuid.New()

	require.NoError(t, h.ProcessTask(context.Background(), task(t, shared.TypeProcessCover,
		shared.ProcessCoverPayload{NovelID: id.String(), OriginalKey: "covers/k.png"})))
	assert.Equal(t, []string{id.String() + "|covers/k.png"}, rec.covers)

	err := h.ProcessTask(context.Background(), task(t, shared.TypeProcessCover, shared.ProcessCoverPayload{NovelID: "nope"}))
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	err = h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeProcessCover, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestDeleteNovelAssetsHandler_RetriesStorageErrors(t *testing.T) {
	rec := &recorder{err: errors.New("minio down")}
	h := NewDeleteNovelAssetsHandler(rec)

	err := h.ProcessTask(context.Background(), task(t, shared.TypeDeleteNovelAssets, shared.DeleteNovelAssetsPayload{NovelID: uuid.NewString()}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	assert.Len(t, rec.deleted, 1)
}
