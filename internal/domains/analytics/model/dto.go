package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	DateLayout         = "2006-01-02"
	MaxExportRangeDays = 366
)

type HeartbeatRequest struct {
	Seconds int64 `json:"seconds"`
}

func (r HeartbeatRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Seconds, validation.Required, validation.Min(int64(1)), validation.Max(int64(MaxHeartbeatSeconds))),
	)
}

// ExportRequest - from/to dạng YYYY-MM-DD, to tính trọn ngày
type ExportRequest struct {
	From string `form:"from"`
	To   string `form:"to"`
}

func (r ExportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.From, validation.Date(DateLayout)),
		validation.Field(&r.To, validation.Date(DateLayout)),
	)
}

// Range trả về [from, to) theo UTC; mặc định 30 ngày gần nhất
func (r ExportRequest) Range(now time.Time) (time.Time, time.Time, error) {
	to := now.UTC().Truncate(24*time.Hour).AddDate(0, 0, 1)
	if r.To != "" {
		t, err := time.Parse(DateLayout, r.To)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t.AddDate(0, 0, 1)
	}

	from := to.AddDate(0, 0, -30)
	if r.From != "" {
		f, err := time.Parse(DateLayout, r.From)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = f
	}

	if !from.Before(to) || to.Sub(from) > MaxExportRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return from, to, nil
}
