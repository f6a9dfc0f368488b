package stats

import (
	"context"
	"testing"
	"time"

	"github.com/studyhive/server/model"
	"github.com/studyhive/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nopLogger() *zap.Logger { l, _ := zap.NewDevelopment(); return l }

func TestRefresh_Counts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	c, _ := testutil.SetupTestCache(t)
	svc := NewService(db, c, time.Minute, nopLogger())

	require.NoError(t, db.Create(&model.User{Name: "A", Email: "a@x.com", PasswordHash: "x"}).Error)
	require.NoError(t, db.Create(&model.User{Name: "B", Email: "b@x.com", PasswordHash: "x"}).Error)
	require.NoError(t, db.Create(&model.Complaint{Email: "a@x.com", Subject: "s", Message: "m", Status: model.ComplaintPending}).Error)
	require.NoError(t, db.Create(&model.StudySession{UserID: "u1", Status: model.StatusStudying, LastActive: time.Now()}).Error)
	require.NoError(t, db.Create(&model.StudySession{UserID: "u2", Status: model.StatusOffline, LastActive: time.Now()}).Error)

	stats, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalComplaints)
	assert.Equal(t, int64(1), stats.PendingComplaints)
	assert.Equal(t, int64(1), stats.ActiveSessions)
	assert.False(t, stats.GeneratedAt.IsZero())
}

func TestCurrent_ServesCachedSnapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	c, _ := testutil.SetupTestCache(t)
	svc := NewService(db, c, time.Minute, nopLogger())

	first, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.TotalUsers)

	// New rows are invisible until the TTL lapses or Refresh runs.
	require.NoError(t, db.Create(&model.User{Name: "A", Email: "a@x.com", PasswordHash: "x"}).Error)

	cached, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), cached.TotalUsers)

	fresh, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.TotalUsers)
}
