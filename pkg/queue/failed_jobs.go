package queue

import (
	"context"
	"time"

	"github.com/shashiranjanraj/kashvi-shop/pkg/logger"
	"github.com/shashiranjanraj/kashvi-shop/pkg/metrics"
)

// FailedJob is a row of failed_jobs. The table is created by a migration.
type FailedJob struct {
	ID       uint      `gorm:"primaryKey"`
	Job      string    `gorm:"size:100;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"not null;index"`
}

func (FailedJob) TableName() string { return "failed_jobs" }

func (q *Queue) recordFailure(ctx context.Context, name string, payload []byte, cause error, attempts int) {
	metrics.JobsTotal.WithLabelValues(name, "failed").Inc()
	if q.db == nil {
		return
	}
	row := FailedJob{
		Job:      name,
		Payload:  string(payload),
		Error:    cause.Error(),
		Attempts: attempts,
		FailedAt: time.Now().UTC(),
	}
	if err := q.db.WithContext(ctx).Create(&row).Error; err != nil {
		logger.WithCtx(ctx).Error("queue: could not record failed job", "job", name, "error", err)
	}
}

// Failed lists recorded failures, newest first.
func (q *Queue) Failed(ctx context.Context, limit int) ([]FailedJob, error) {
	var out []FailedJob
	if q.db == nil {
		return out, nil
	}
	err := q.db.WithContext(ctx).Order("failed_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}

// PruneFailed deletes failures older than age and reports how many went.
func (q *Queue) PruneFailed(ctx context.Context, age time.Duration) (int64, error) {
	if q.db == nil {
		return 0, nil
	}
	res := q.db.WithContext(ctx).Where("failed_at < ?", time.Now().UTC().Add(-age)).Delete(&FailedJob{})
	return res.RowsAffected, res.Error
}
