package social

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/studyhive/server/identity"
	"github.com/studyhive/server/model"
	"github.com/studyhive/server/realtime"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound     = errors.New("social: no user with that email")
	ErrSelfRequest      = errors.New("social: cannot send a friend request to yourself")
	ErrAlreadyFriends   = errors.New("social: already friends")
	ErrAlreadyRequested = errors.New("social: a pending request already exists")
	ErrRequestNotFound  = errors.New("social: friend request not found")
	ErrRequestClosed    = errors.New("social: friend request already handled")
)

// FriendView is the denormalized friend list entry.
type FriendView struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	FriendID    string    `json:"friend_id"`
	FriendName  string    `json:"friend_name"`
	FriendEmail string    `json:"friend_email"`
	CreatedAt   time.Time `json:"created_at"`
}

// RequestView is the denormalized pending request entry.
type RequestView struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	ReceiverID  string    `json:"receiver_id"`
	SenderName  string    `json:"sender_name"`
	SenderEmail string    `json:"sender_email"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Service implements the friendship and friend-request subsystem.
type Service struct {
	db       *gorm.DB
	resolver *identity.Resolver
	events   *realtime.Publisher
	logger   *zap.Logger
}

func NewService(db *gorm.DB, resolver *identity.Resolver, events *realtime.Publisher, logger *zap.Logger) *Service {
	return &Service{db: db, resolver: resolver, events: events, logger: logger}
}

// SendFriendRequest resolves the target by email and creates a pending
// request. Duplicate relationships and duplicate pending requests in either
// direction are rejected before anything is written.
func (s *Service) SendFriendRequest(ctx context.Context, senderID, targetEmail string) (*RequestView, error) {
	email := strings.ToLower(strings.TrimSpace(targetEmail))
	if email == "" {
		return nil, ErrUserNotFound
	}

	var target model.User
	err := s.db.WithContext(ctx).Where("lower(email) = ?", email).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, err
	}
	if target.ID == senderID {
		return nil, ErrSelfRequest
	}

	var edges int64
	if err := s.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			senderID, target.ID, target.ID, senderID).
		Count(&edges).Error; err != nil {
		return nil, err
	}
	if edges > 0 {
		return nil, ErrAlreadyFriends
	}

	var pending int64
	if err := s.db.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("status = ?", model.RequestPending).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			senderID, target.ID, target.ID, senderID).
		Count(&pending).Error; err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, ErrAlreadyRequested
	}

	req := &model.FriendRequest{
		SenderID:   senderID,
		ReceiverID: target.ID,
		Status:     model.RequestPending,
	}
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return nil, err
	}

	sender, err := s.resolver.One(ctx, senderID)
	if err != nil {
		s.logger.Warn("sender resolve failed", zap.Error(err))
		sender = identity.Identity{ID: senderID, Name: identity.PlaceholderName}
	}
	s.notify(ctx, target.ID, model.NotifFriendRequest,
		"New friend request",
		sender.Name+" sent you a friend request")
	s.events.Change(ctx, realtime.TableFriendRequests, realtime.ActionInsert, req.ID)

	return &RequestView{
		ID:          req.ID,
		SenderID:    req.SenderID,
		ReceiverID:  req.ReceiverID,
		SenderName:  sender.Name,
		SenderEmail: sender.Email,
		Status:      req.Status,
		CreatedAt:   req.CreatedAt,
	}, nil
}

// Accept flips a pending request to accepted and inserts both directional
// friendship edges in one transaction. The directed-pair unique index plus
// insert-or-ignore keeps a racing second accept from creating duplicate
// edges; a repeated accept on an already-accepted request is a no-op.
func (s *Service) Accept(ctx context.Context, receiverID, requestID string) error {
	var req model.FriendRequest
	err := s.db.WithContext(ctx).
		Where("id = ? AND receiver_id = ?", requestID, receiverID).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRequestNotFound
	} else if err != nil {
		return err
	}

	switch req.Status {
	case model.RequestAccepted:
		return nil
	case model.RequestRejected:
		return ErrRequestClosed
	}

	errRaced := errors.New("raced")
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.FriendRequest{}).
			Where("id = ? AND status = ?", requestID, model.RequestPending).
			Update("status", model.RequestAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errRaced
		}
		edges := []model.Friendship{
			{UserID: req.ReceiverID, FriendID: req.SenderID},
			{UserID: req.SenderID, FriendID: req.ReceiverID},
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error
	})
	if errors.Is(err, errRaced) {
		// Someone else settled the request between our read and write.
		var current model.FriendRequest
		if e := s.db.WithContext(ctx).First(&current, "id = ?", requestID).Error; e != nil {
			return e
		}
		if current.Status == model.RequestAccepted {
			return nil
		}
		return ErrRequestClosed
	}
	if err != nil {
		return err
	}

	receiver, rerr := s.resolver.One(ctx, receiverID)
	if rerr != nil {
		receiver = identity.Identity{ID: receiverID, Name: identity.PlaceholderName}
	}
	s.notify(ctx, req.SenderID, model.NotifFriendAccept,
		"Friend request accepted",
		receiver.Name+" accepted your friend request")
	s.events.Change(ctx, realtime.TableFriendRequests, realtime.ActionUpdate, requestID)
	s.events.Change(ctx, realtime.TableFriends, realtime.ActionInsert, requestID)
	return nil
}

// Reject marks a pending request rejected. Rejected is terminal: the
// request can never be accepted afterwards and no friendship is created.
func (s *Service) Reject(ctx context.Context, receiverID, requestID string) error {
	var req model.FriendRequest
	err := s.db.WithContext(ctx).
		Where("id = ? AND receiver_id = ?", requestID, receiverID).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRequestNotFound
	} else if err != nil {
		return err
	}
	if req.Status != model.RequestPending {
		if req.Status == model.RequestRejected {
			return nil
		}
		return ErrRequestClosed
	}

	res := s.db.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("id = ? AND status = ?", requestID, model.RequestPending).
		Update("status", model.RequestRejected)
	if res.Error != nil {
		return res.Error
	}
	s.events.Change(ctx, realtime.TableFriendRequests, realtime.ActionUpdate, requestID)
	return nil
}

// RemoveFriend deletes both directional edges for the pair in one statement.
func (s *Service) RemoveFriend(ctx context.Context, userID, friendID string) error {
	res := s.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID, friendID, friendID, userID).
		Delete(&model.Friendship{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		s.events.Change(ctx, realtime.TableFriends, realtime.ActionDelete, friendID)
	}
	return nil
}

// Friends returns the user's friend list with display names resolved.
func (s *Service) Friends(ctx context.Context, userID string) ([]FriendView, error) {
	var edges []model.Friendship
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Find(&edges).Error; err != nil {
		return nil, err
	}

	ids := make([]string, len(edges))
	for i, e := range edges {
		ids[i] = e.FriendID
	}
	resolved, err := s.resolver.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]FriendView, len(edges))
	for i, e := range edges {
		who := resolved[e.FriendID]
		views[i] = FriendView{
			ID:          e.ID,
			UserID:      e.UserID,
			FriendID:    e.FriendID,
			FriendName:  who.Name,
			FriendEmail: who.Email,
			CreatedAt:   e.CreatedAt,
		}
	}
	return views, nil
}

// PendingRequests returns requests awaiting the user's decision.
func (s *Service) PendingRequests(ctx context.Context, receiverID string) ([]RequestView, error) {
	var reqs []model.FriendRequest
	if err := s.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", receiverID, model.RequestPending).
		Order("created_at").
		Find(&reqs).Error; err != nil {
		return nil, err
	}

	ids := make([]string, len(reqs))
	for i, r := range reqs {
		ids[i] = r.SenderID
	}
	resolved, err := s.resolver.Resolve(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]RequestView, len(reqs))
	for i, r := range reqs {
		who := resolved[r.SenderID]
		views[i] = RequestView{
			ID:          r.ID,
			SenderID:    r.SenderID,
			ReceiverID:  r.ReceiverID,
			SenderName:  who.Name,
			SenderEmail: who.Email,
			Status:      r.Status,
			CreatedAt:   r.CreatedAt,
		}
	}
	return views, nil
}

// notify writes a notification row and pushes it on the user's channel.
// Best-effort: a failed notification never fails the triggering action.
func (s *Service) notify(ctx context.Context, userID, kind, title, body string) {
	n := &model.Notification{UserID: userID, Type: kind, Title: title, Body: body}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		s.logger.Warn("notification write failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}
	s.events.Notify(ctx, userID, realtime.TableNotifications, realtime.ActionInsert, n.ID)
}
