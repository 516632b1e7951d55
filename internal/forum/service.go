package forum

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/emilythestrangee/forum/backend/internal/models"
)

// PageSize bounds every thread listing.
const PageSize = 20

// ReplyNotifier is told about replies after they are committed. Failures are
// logged and never reach the caller of AppendReply.
type ReplyNotifier interface {
	ReplyPosted(ctx context.Context, author models.User, thread models.Thread, reply models.Reply) error
}

// Service implements the vote ledger, the tally aggregator and the reply
// store on top of a transactional gorm database.
type Service struct {
	db       *gorm.DB
	notifier ReplyNotifier
	views    *viewTracker
	now      func() time.Time

	notifyTimeout time.Duration
	pending       sync.WaitGroup
}

type Option func(*Service)

func WithNotifier(n ReplyNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithViewWindow(d time.Duration) Option {
	return func(s *Service) { s.views = newViewTracker(d) }
}

func New(db *gorm.DB, opts ...Option) *Service {
	s := &Service{
		db:            db,
		views:         newViewTracker(ViewWindow),
		now:           func() time.Time { return time.Now().UTC() },
		notifyTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Wait blocks until background reply notifications have finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

// withTx runs fn in one database transaction. Domain errors returned by fn
// pass through unchanged; anything else is reported as ErrTransactionFailed.
func (s *Service) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnauthorized), errors.Is(err, ErrValidation):
		return err
	default:
		return txFailed(err)
	}
}

func (s *Service) notifyReply(thread models.Thread, reply models.Reply) {
	if s.notifier == nil || thread.AuthorID == reply.AuthorID {
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()

		var author models.User
		if err := s.db.WithContext(ctx).First(&author, thread.AuthorID).Error; err != nil {
			log.Printf("[FORUM] reply %d: load thread author %d: %v", reply.ID, thread.AuthorID, err)
			return
		}
		if err := s.notifier.ReplyPosted(ctx, author, thread, reply); err != nil {
			log.Printf("[FORUM] reply %d: notify thread author %d: %v", reply.ID, author.ID, err)
		}
	}()
}
