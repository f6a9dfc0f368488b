package stats

import (
	"context"
	"encoding/json"
	"time"

	"github.com/studyhive/server/cache"
	"github.com/studyhive/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const cacheKey = "stats:current"

// Statistics is the aggregate snapshot served to the admin console.
type Statistics struct {
	TotalUsers        int64     `json:"total_users"`
	TotalComplaints   int64     `json:"total_complaints"`
	PendingComplaints int64     `json:"pending_complaints"`
	TotalNotes        int64     `json:"total_notes"`
	TotalTasks        int64     `json:"total_tasks"`
	TotalMessages     int64     `json:"total_messages"`
	ActiveSessions    int64     `json:"active_sessions"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// Service computes aggregate statistics and caches the snapshot.
type Service struct {
	db     *gorm.DB
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewService(db *gorm.DB, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Service{db: db, cache: c, ttl: ttl, logger: logger}
}

// Current returns the cached snapshot, recomputing on a miss.
func (s *Service) Current(ctx context.Context) (*Statistics, error) {
	if raw, err := s.cache.Get(ctx, cacheKey); err == nil {
		var stats Statistics
		if json.Unmarshal([]byte(raw), &stats) == nil {
			return &stats, nil
		}
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the snapshot and stores it in the cache.
func (s *Service) Refresh(ctx context.Context) (*Statistics, error) {
	db := s.db.WithContext(ctx)
	stats := &Statistics{GeneratedAt: time.Now()}

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, db.Model(&model.User{})},
		{&stats.TotalComplaints, db.Model(&model.Complaint{})},
		{&stats.PendingComplaints, db.Model(&model.Complaint{}).Where("status = ?", model.ComplaintPending)},
		{&stats.TotalNotes, db.Model(&model.Note{})},
		{&stats.TotalTasks, db.Model(&model.Task{})},
		{&stats.TotalMessages, db.Model(&model.GroupMessage{})},
		{&stats.ActiveSessions, db.Model(&model.StudySession{}).Where("status <> ?", model.StatusOffline)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	if data, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(data), s.ttl); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}
