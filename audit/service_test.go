package audit

import (
	"context"
	"testing"

	"github.com/studyhive/server/model"
	"github.com/studyhive/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nopLogger() *zap.Logger { l, _ := zap.NewDevelopment(); return l }

func TestLog_FlushedOnStop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nopLogger())

	svc.Log(Entry{
		TraceID:   "trace-1",
		ActorID:   "root",
		ActorRole: "admin",
		Action:    "reset_user_password",
		Detail:    map[string]string{"target_user_id": "u-1"},
		IP:        "127.0.0.1",
	})
	svc.Log(Entry{ActorID: "root", Action: "admin_login"})
	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Order("created_at").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, "reset_user_password", logs[0].Action)
	assert.Equal(t, "admin", logs[0].ActorRole)
	assert.Contains(t, string(logs[0].Detail), "u-1")
}

func TestStop_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nopLogger())
	svc.Stop(context.Background())
	svc.Stop(context.Background())
}

func TestLog_ManyEntries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nopLogger())

	for i := 0; i < 250; i++ {
		svc.Log(Entry{ActorID: "root", Action: "admin_login"})
	}
	svc.Stop(context.Background())

	var count int64
	require.NoError(t, db.Model(&model.AuditLog{}).Count(&count).Error)
	assert.Equal(t, int64(250), count)
}
