package realtime

import (
	"context"
	"encoding/json"

	"github.com/studyhive/server/cache"
	"go.uber.org/zap"
)

// Tables with a change feed. Clients subscribed over SSE receive
// {table, action, id} and refetch the affected aggregate; event payloads
// never carry row data, so partial-push and full-reload shapes cannot
// diverge.
const (
	TableFriends        = "friends"
	TableFriendRequests = "friend_requests"
	TableStudySessions  = "study_sessions"
	TableGroupMessages  = "group_messages"
	TableNotifications  = "notifications"
)

// Change actions.
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event is one table-change notification.
type Event struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
}

// ChangeChannel is the pub/sub channel carrying changes for a table.
func ChangeChannel(table string) string {
	return "changes:" + table
}

// UserChannel is the pub/sub channel carrying per-user events
// (currently notification inserts).
func UserChannel(userID string) string {
	return "user:" + userID
}

// Publisher fans table-change events out through the cache pub/sub layer.
type Publisher struct {
	ps     cache.PubSub
	logger *zap.Logger
}

func NewPublisher(ps cache.PubSub, logger *zap.Logger) *Publisher {
	return &Publisher{ps: ps, logger: logger}
}

// Change publishes a change event on the table's broadcast channel.
// Publish failures are logged, not surfaced; the bulk reload path is the
// fallback for any client that misses a push.
func (p *Publisher) Change(ctx context.Context, table, action, id string) {
	payload, _ := json.Marshal(Event{Table: table, Action: action, ID: id})
	if err := p.ps.Publish(ctx, ChangeChannel(table), string(payload)); err != nil {
		p.logger.Warn("change publish failed",
			zap.String("table", table),
			zap.Error(err))
	}
}

// Notify publishes a change event on a single user's channel.
func (p *Publisher) Notify(ctx context.Context, userID, table, action, id string) {
	payload, _ := json.Marshal(Event{Table: table, Action: action, ID: id})
	if err := p.ps.Publish(ctx, UserChannel(userID), string(payload)); err != nil {
		p.logger.Warn("user publish failed",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}
