package presence

import (
	"context"
	"errors"
	"time"

	"github.com/studyhive/server/identity"
	"github.com/studyhive/server/model"
	"github.com/studyhive/server/realtime"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInvalidStatus is returned for a status outside {studying, break, offline}.
var ErrInvalidStatus = errors.New("presence: invalid status")

// Entry is one presence row in the read model. Users without a stored
// session appear as implicit offline entries with no timestamps.
type Entry struct {
	UserID     string     `json:"user_id"`
	UserName   string     `json:"user_name"`
	Status     string     `json:"status"`
	Subject    *string    `json:"subject,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	LastActive *time.Time `json:"last_active,omitempty"`
}

// Service implements the study-status presence subsystem.
type Service struct {
	db       *gorm.DB
	resolver *identity.Resolver
	events   *realtime.Publisher
	logger   *zap.Logger
}

func NewService(db *gorm.DB, resolver *identity.Resolver, events *realtime.Publisher, logger *zap.Logger) *Service {
	return &Service{db: db, resolver: resolver, events: events, logger: logger}
}

// SetStatus upserts the caller's presence record. Subject is only kept for
// the studying status and cleared otherwise. last_active is refreshed on
// every call; nothing expires a stale record; a user who disappears
// without reporting offline keeps their last reported status.
func (s *Service) SetStatus(ctx context.Context, userID, status string, subject string) error {
	switch status {
	case model.StatusStudying, model.StatusBreak, model.StatusOffline:
	default:
		return ErrInvalidStatus
	}

	var subj *string
	if status == model.StatusStudying && subject != "" {
		subj = &subject
	}

	now := time.Now()
	session := &model.StudySession{
		UserID:     userID,
		Status:     status,
		Subject:    subj,
		LastActive: now,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"status":      status,
			"subject":     subj,
			"last_active": now,
		}),
	}).Create(session).Error
	if err != nil {
		return err
	}

	s.events.Change(ctx, realtime.TableStudySessions, realtime.ActionUpdate, userID)
	return nil
}

// List returns one entry for the user and each of their friends.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	var edges []model.Friendship
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&edges).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(edges)+1)
	ids = append(ids, userID)
	for _, e := range edges {
		ids = append(ids, e.FriendID)
	}

	var sessions []model.StudySession
	if err := s.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	byUser := make(map[string]model.StudySession, len(sessions))
	for _, sess := range sessions {
		byUser[sess.UserID] = sess
	}

	resolved, err := s.resolver.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		who := resolved[id]
		if sess, ok := byUser[id]; ok {
			started, active := sess.StartedAt, sess.LastActive
			entries = append(entries, Entry{
				UserID:     id,
				UserName:   who.Name,
				Status:     sess.Status,
				Subject:    sess.Subject,
				StartedAt:  &started,
				LastActive: &active,
			})
			continue
		}
		entries = append(entries, Entry{
			UserID:   id,
			UserName: who.Name,
			Status:   model.StatusOffline,
		})
	}
	return entries, nil
}
