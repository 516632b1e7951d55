package forum

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/emilythestrangee/forum/backend/internal/models"
)

const (
	SortRecent    = "recent"
	SortPopular   = "popular"
	SortCommented = "commented"

	// CategoryAll disables the category filter.
	CategoryAll = "all"
)

var sortOrders = map[string]string{
	"":            "created_at desc",
	SortRecent:    "created_at desc",
	SortPopular:   "upvotes desc",
	SortCommented: "reply_count desc",
}

type NewThread struct {
	Title    string
	Category string
	Content  string
}

type ThreadQuery struct {
	Category string
	Sort     string
}

// CreateThread stores a thread with zeroed tallies. The author's name and
// photo are copied from their profile.
func (s *Service) CreateThread(ctx context.Context, userID int, in NewThread) (*models.Thread, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}
	title := strings.TrimSpace(in.Title)
	category := strings.ToLower(strings.TrimSpace(in.Category))
	content := strings.TrimSpace(in.Content)
	switch {
	case title == "":
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	case category == "" || category == CategoryAll:
		return nil, fmt.Errorf("%w: a concrete category is required", ErrValidation)
	case content == "":
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	author, err := s.loadAuthor(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}

	thread := models.Thread{
		Title:          title,
		Category:       category,
		Content:        content,
		AuthorID:       author.ID,
		AuthorName:     author.Username,
		AuthorPhotoURL: author.Avatar,
	}
	if err := s.db.WithContext(ctx).Create(&thread).Error; err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	return &thread, nil
}

func (s *Service) GetThread(ctx context.Context, threadID int) (*models.Thread, error) {
	var thread models.Thread
	if err := s.db.WithContext(ctx).First(&thread, threadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: thread %d", ErrNotFound, threadID)
		}
		return nil, fmt.Errorf("get thread %d: %w", threadID, err)
	}
	return &thread, nil
}

// ListThreads returns the current first page of threads, optionally limited
// to one category.
func (s *Service) ListThreads(ctx context.Context, q ThreadQuery) ([]models.Thread, error) {
	order, ok := sortOrders[strings.ToLower(strings.TrimSpace(q.Sort))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort %q", ErrValidation, q.Sort)
	}

	query := s.db.WithContext(ctx).Model(&models.Thread{})
	if category := strings.ToLower(strings.TrimSpace(q.Category)); category != "" && category != CategoryAll {
		query = query.Where("category = ?", category)
	}

	threads := []models.Thread{}
	if err := query.Order(order).Order("id desc").Limit(PageSize).Find(&threads).Error; err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	return threads, nil
}

func (s *Service) loadAuthor(db *gorm.DB, userID int) (*models.User, error) {
	var author models.User
	if err := db.First(&author, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown user %d", ErrUnauthorized, userID)
		}
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	return &author, nil
}

func (s *Service) lookupThread(db *gorm.DB, threadID int) (*models.Thread, error) {
	var thread models.Thread
	if err := db.First(&thread, threadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: thread %d", ErrNotFound, threadID)
		}
		return nil, err
	}
	return &thread, nil
}
