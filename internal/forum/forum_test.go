package forum

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emilythestrangee/forum/backend/internal/config"
	"github.com/emilythestrangee/forum/backend/internal/database"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

var dbSeq atomic.Int64

var errInjected = errors.New("injected failure")

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	svc, err := database.New(config.Database{
		Driver:   "sqlite",
		Path:     fmt.Sprintf("file:forum_%d?mode=memory&cache=shared", dbSeq.Add(1)),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc.GetDB()
}

func createUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()

	u := models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: "x",
		Avatar:   "https://example.com/" + name + ".png",
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createThread(t *testing.T, svc *Service, author models.User, category string) models.Thread {
	t.Helper()

	th, err := svc.CreateThread(context.Background(), author.ID, NewThread{
		Title:    "thread by " + author.Username,
		Category: category,
		Content:  "hello",
	})
	require.NoError(t, err)
	return *th
}

// failThreadUpdates makes every UPDATE of the threads table fail.
func failThreadUpdates(t *testing.T, db *gorm.DB) {
	t.Helper()

	err := db.Callback().Update().Before("gorm:update").Register("test:fail_thread_updates", func(tx *gorm.DB) {
		if tx.Statement.Table == "threads" {
			_ = tx.AddError(errInjected)
		}
	})
	require.NoError(t, err)
}

type snapshot struct {
	thread  models.Thread
	votes   []models.Vote
	replies []models.Reply
}

func takeSnapshot(t *testing.T, db *gorm.DB, threadID int) snapshot {
	t.Helper()

	var s snapshot
	require.NoError(t, db.First(&s.thread, threadID).Error)
	require.NoError(t, db.Where("thread_id = ?", threadID).Order("id").Find(&s.votes).Error)
	require.NoError(t, db.Where("thread_id = ?", threadID).Order("id").Find(&s.replies).Error)
	return s
}

// requireTalliesMatch checks the denormalized counters against the ledger
// and the reply store.
func requireTalliesMatch(t *testing.T, db *gorm.DB, threadID int) models.Thread {
	t.Helper()

	var thread models.Thread
	require.NoError(t, db.First(&thread, threadID).Error)

	var up, down, replies int64
	require.NoError(t, db.Model(&models.Vote{}).Where("thread_id = ? AND direction = ?", threadID, models.DirectionUp).Count(&up).Error)
	require.NoError(t, db.Model(&models.Vote{}).Where("thread_id = ? AND direction = ?", threadID, models.DirectionDown).Count(&down).Error)
	require.NoError(t, db.Model(&models.Reply{}).Where("thread_id = ?", threadID).Count(&replies).Error)

	require.EqualValues(t, up, thread.Upvotes, "upvotes drifted from ledger")
	require.EqualValues(t, down, thread.Downvotes, "downvotes drifted from ledger")
	require.EqualValues(t, replies, thread.ReplyCount, "reply count drifted from replies")
	return thread
}
