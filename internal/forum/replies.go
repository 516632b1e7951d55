package forum

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/emilythestrangee/forum/backend/internal/models"
)

// AppendReply adds a reply and bumps the thread's reply count in one
// transaction. The count is incremented in SQL, so concurrent replies never
// overwrite each other's increment.
func (s *Service) AppendReply(ctx context.Context, threadID, userID int, content string) (*models.Reply, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: reply content is required", ErrValidation)
	}

	var (
		reply  models.Reply
		thread *models.Thread
	)
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		author, err := s.loadAuthor(tx, userID)
		if err != nil {
			return err
		}
		if thread, err = s.lookupThread(tx, threadID); err != nil {
			return err
		}

		now := s.now()
		reply = models.Reply{
			ThreadID:       threadID,
			Content:        content,
			AuthorID:       author.ID,
			AuthorName:     author.Username,
			AuthorPhotoURL: author.Avatar,
			CreatedAt:      now,
		}
		if err := tx.Create(&reply).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Thread{}).Where("id = ?", threadID).UpdateColumns(map[string]any{
			"reply_count": gorm.Expr("reply_count + 1"),
			"updated_at":  now,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("%w: thread %d", ErrNotFound, threadID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyReply(*thread, reply)
	return &reply, nil
}

// ListReplies returns every reply of a thread, oldest first.
func (s *Service) ListReplies(ctx context.Context, threadID int) ([]models.Reply, error) {
	db := s.db.WithContext(ctx)
	if _, err := s.lookupThread(db.Select("id"), threadID); err != nil {
		return nil, err
	}

	replies := []models.Reply{}
	if err := db.Where("thread_id = ?", threadID).Order("created_at asc").Order("id asc").Find(&replies).Error; err != nil {
		return nil, fmt.Errorf("list replies of thread %d: %w", threadID, err)
	}
	return replies, nil
}
