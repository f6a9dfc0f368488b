package model_test

import (
	"testing"
	"time"

	"github.com/studyhive/server/model"
	"github.com/studyhive/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoMigrate_InsertAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)

	// User
	user := &model.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "hash", Status: 1}
	require.NoError(t, db.Create(user).Error)
	assert.NotEmpty(t, user.ID)

	var found model.User
	require.NoError(t, db.First(&found, "id = ?", user.ID).Error)
	assert.Equal(t, "alice@example.com", found.Email)

	// Profile
	require.NoError(t, db.Create(&model.Profile{UserID: user.ID, Name: user.Name, Email: user.Email}).Error)

	// FriendRequest and Friendship
	req := &model.FriendRequest{SenderID: user.ID, ReceiverID: "u-2", Status: model.RequestPending}
	require.NoError(t, db.Create(req).Error)
	require.NoError(t, db.Create(&model.Friendship{UserID: user.ID, FriendID: "u-2"}).Error)

	// StudySession
	subj := "Algebra"
	require.NoError(t, db.Create(&model.StudySession{
		UserID: user.ID, Status: model.StatusStudying, Subject: &subj, LastActive: time.Now(),
	}).Error)

	// GroupMessage
	require.NoError(t, db.Create(&model.GroupMessage{
		UserID: user.ID, Message: "hello", Mentions: []byte(`["u-2"]`),
	}).Error)

	// Planner rows
	require.NoError(t, db.Create(&model.Task{UserID: user.ID, Title: "Revise", Date: "2026-09-01"}).Error)
	require.NoError(t, db.Create(&model.Exam{UserID: user.ID, Subject: "Math", Date: "2026-10-01", Time: "09:00"}).Error)
	require.NoError(t, db.Create(&model.Note{UserID: user.ID, Title: "Summary", Content: "..."}).Error)
	require.NoError(t, db.Create(&model.UserSettings{UserID: user.ID, WorkTime: 25, BreakTime: 5}).Error)
	require.NoError(t, db.Create(&model.UserPreferences{UserID: user.ID, Notifications: true}).Error)

	// Notification, Complaint, console rows
	require.NoError(t, db.Create(&model.Notification{UserID: user.ID, Type: model.NotifMention, Title: "t"}).Error)
	require.NoError(t, db.Create(&model.Complaint{Email: "x@y.com", Subject: "s", Message: "m"}).Error)
	require.NoError(t, db.Create(&model.AdminAccount{ID: "root", Name: "Root", PasswordHash: "h", Role: "admin"}).Error)
	require.NoError(t, db.Create(&model.UserRole{UserID: user.ID, Role: "moderator", AssignedBy: "root"}).Error)
	require.NoError(t, db.Create(&model.AuditLog{TraceID: "trace-1", ActorID: "root", Action: "admin_login"}).Error)
}

func TestFriendshipEdge_UniquePair(t *testing.T) {
	db := testutil.SetupTestDB(t)

	require.NoError(t, db.Create(&model.Friendship{UserID: "a", FriendID: "b"}).Error)
	// Reverse direction is a distinct edge.
	require.NoError(t, db.Create(&model.Friendship{UserID: "b", FriendID: "a"}).Error)
	// Duplicate directed pair violates the unique index.
	err := db.Create(&model.Friendship{UserID: "a", FriendID: "b"}).Error
	assert.Error(t, err)
}

func TestUser_EmailUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)

	require.NoError(t, db.Create(&model.User{Name: "A", Email: "dup@x.com", PasswordHash: "h"}).Error)
	err := db.Create(&model.User{Name: "B", Email: "dup@x.com", PasswordHash: "h"}).Error
	assert.Error(t, err)
}

func TestStudySession_OnePerUser(t *testing.T) {
	db := testutil.SetupTestDB(t)

	require.NoError(t, db.Create(&model.StudySession{UserID: "u-1", Status: model.StatusBreak, LastActive: time.Now()}).Error)
	err := db.Create(&model.StudySession{UserID: "u-1", Status: model.StatusStudying, LastActive: time.Now()}).Error
	assert.Error(t, err)
}
