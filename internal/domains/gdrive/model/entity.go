package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// DriveConnection - token OAuth của user, lưu dạng JSON
type DriveConnection struct {
	ProfileID uuid.UUID
	Token     *oauth2.Token
	CreatedAt time.Time
	UpdatedAt time.Time
}

type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// ImportJob - một lần import nhiều file Drive thành chapter
type ImportJob struct {
	ID              uuid.UUID
	ProfileID       uuid.UUID
	NovelID         uuid.UUID
	FileIDs         []string
	StartingChapter int // 0 = nối tiếp chapter cuối
	Coins           int64
	PublishAt       *time.Time
	Status          JobStatus
	Imported        int
	Failed          int
	Error           *string
	DoneFiles       map[string]int // file id → số chapter đã tạo, để chạy lại không tạo trùng
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (j *ImportJob) Finished() bool {
	return j.Status == JobDone || j.Status == JobFailed
}

// NextAfterDone trả về số chapter kế tiếp sau các file đã import ở lần chạy trước
func (j *ImportJob) NextAfterDone(start int) int {
	for _, n := range j.DoneFiles {
		if n >= start {
			start = n + 1
		}
	}
	return start
}

// FileResult là kết quả import của một file
type FileResult struct {
	FileID        string `json:"file_id"`
	Title         string `json:"title,omitempty"`
	ChapterNumber int    `json:"chapter_number,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Summarize tính status cuối: chỉ failed khi không import được file nào
func Summarize(results []FileResult) (status JobStatus, imported, failed int, firstErr *string) {
	for i := range results {
		if results[i].Error != "" {
			failed++
			if firstErr == nil {
				msg := results[i].FileID + ": " + results[i].Error
				firstErr = &msg
			}
			continue
		}
		imported++
	}
	status = JobDone
	if imported == 0 && failed > 0 {
		status = JobFailed
	}
	return status, imported, failed, firstErr
}
