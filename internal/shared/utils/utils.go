package utils

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// UnmarshalTask decode JSON payload của asynq task
func UnmarshalTask(t *asynq.Task, v interface{}) error {
	if len(t.Payload()) == 0 {
		return nil
	}
	if err := json.Unmarshal(t.Payload(), v); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", t.Type(), err)
	}
	return nil
}

// NormalizePage trả về page/limit hợp lệ và offset tương ứng
func NormalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit, (page - 1) * limit
}
