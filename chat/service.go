package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/studyhive/server/cache"
	"github.com/studyhive/server/config"
	"github.com/studyhive/server/identity"
	"github.com/studyhive/server/model"
	"github.com/studyhive/server/realtime"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	historyKey = "chat:group:history"
	// historyWarmKey marks the cached window as seeded from the database.
	// Until it exists the list may be missing older rows and must not be
	// trusted or appended to.
	historyWarmKey = "chat:group:history:warm"
)

var (
	ErrEmptyMessage = errors.New("chat: empty message")
	ErrTooLong      = errors.New("chat: message too long")
)

// MessageView is the denormalized chat message.
type MessageView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Message   string    `json:"message"`
	Mentions  []string  `json:"mentions"`
	CreatedAt time.Time `json:"created_at"`
}

// Service implements the group chat subsystem: append-only messages,
// a cached recent-history window, and insert push events.
type Service struct {
	db       *gorm.DB
	cache    cache.Cache
	resolver *identity.Resolver
	events   *realtime.Publisher
	cfg      config.AppConfig
	logger   *zap.Logger
}

func NewService(db *gorm.DB, c cache.Cache, resolver *identity.Resolver, events *realtime.Publisher, cfg config.AppConfig, logger *zap.Logger) *Service {
	if cfg.ChatHistoryLimit <= 0 {
		cfg.ChatHistoryLimit = 50
	}
	if cfg.ChatMaxMessageLen <= 0 {
		cfg.ChatMaxMessageLen = 500
	}
	return &Service{db: db, cache: c, resolver: resolver, events: events, cfg: cfg, logger: logger}
}

// Post appends a message attributed to the caller. Mentioned IDs are stored
// as-is; each one gets a best-effort mention notification.
func (s *Service) Post(ctx context.Context, userID, body string, mentions []string) (*MessageView, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if len([]rune(body)) > s.cfg.ChatMaxMessageLen {
		return nil, ErrTooLong
	}
	if mentions == nil {
		mentions = []string{}
	}

	mentionsJSON, _ := json.Marshal(mentions)
	msg := &model.GroupMessage{
		UserID:   userID,
		Message:  body,
		Mentions: datatypes.JSON(mentionsJSON),
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}

	author, err := s.resolver.One(ctx, userID)
	if err != nil {
		author = identity.Identity{ID: userID, Name: identity.PlaceholderName}
	}
	view := &MessageView{
		ID:        msg.ID,
		UserID:    msg.UserID,
		UserName:  author.Name,
		Message:   msg.Message,
		Mentions:  mentions,
		CreatedAt: msg.CreatedAt,
	}

	s.cachePush(ctx, view)
	s.notifyMentions(ctx, userID, author.Name, mentions)
	s.events.Change(ctx, realtime.TableGroupMessages, realtime.ActionInsert, msg.ID)
	return view, nil
}

// History returns the most recent window of messages in ascending creation
// order. The hot path reads the cached window, but only once the warm marker
// says the database has seeded it; otherwise the window is loaded
// newest-first from the database, reversed, and cached. A freshly posted
// message alone never makes the cache authoritative, so older rows written
// before a restart or cache flush are never hidden.
func (s *Service) History(ctx context.Context) ([]MessageView, error) {
	limit := s.cfg.ChatHistoryLimit

	if warm, err := s.cache.Exists(ctx, historyWarmKey); err == nil && warm {
		if raw, err := s.cache.LRange(ctx, historyKey, 0, int64(limit-1)); err == nil {
			views := make([]MessageView, 0, len(raw))
			for _, item := range raw {
				var v MessageView
				if json.Unmarshal([]byte(item), &v) == nil {
					views = append(views, v)
				}
			}
			reverse(views)
			return views, nil
		}
	}

	var msgs []model.GroupMessage
	if err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&msgs).Error; err != nil {
		return nil, err
	}

	ids := make([]string, len(msgs))
	for i, m := range msgs {
		ids[i] = m.UserID
	}
	resolved, err := s.resolver.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, len(msgs))
	for i, m := range msgs {
		var mentions []string
		_ = json.Unmarshal(m.Mentions, &mentions)
		if mentions == nil {
			mentions = []string{}
		}
		views[i] = MessageView{
			ID:        m.ID,
			UserID:    m.UserID,
			UserName:  resolved[m.UserID].Name,
			Message:   m.Message,
			Mentions:  mentions,
			CreatedAt: m.CreatedAt,
		}
	}
	reverse(views)

	// Seed the cache oldest-first so the newest message lands at index 0.
	// SetNX elects a single warmer when concurrent History calls race.
	if ok, err := s.cache.SetNX(ctx, historyWarmKey, "1", 0); err == nil && ok {
		for i := range views {
			if data, err := json.Marshal(views[i]); err == nil {
				_ = s.cache.LPush(ctx, historyKey, string(data))
			}
		}
		_ = s.cache.LTrim(ctx, historyKey, 0, int64(limit-1))
	}

	return views, nil
}

// cachePush appends a new message to the cached window. It is a no-op while
// the window is cold: appending to an unseeded list would make it look
// authoritative while older rows exist only in the database.
func (s *Service) cachePush(ctx context.Context, view *MessageView) {
	if warm, err := s.cache.Exists(ctx, historyWarmKey); err != nil || !warm {
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	_ = s.cache.LPush(ctx, historyKey, string(data))
	_ = s.cache.LTrim(ctx, historyKey, 0, int64(s.cfg.ChatHistoryLimit-1))
}

func (s *Service) notifyMentions(ctx context.Context, authorID, authorName string, mentions []string) {
	for _, target := range mentions {
		if target == "" || target == authorID {
			continue
		}
		n := &model.Notification{
			UserID: target,
			Type:   model.NotifMention,
			Title:  "You were mentioned",
			Body:   authorName + " mentioned you in group chat",
		}
		if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
			s.logger.Warn("mention notification failed",
				zap.String("user_id", target),
				zap.Error(err))
			continue
		}
		s.events.Notify(ctx, target, realtime.TableNotifications, realtime.ActionInsert, n.ID)
	}
}

func reverse(v []MessageView) {
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
}
