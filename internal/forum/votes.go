package forum

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/forum/backend/internal/models"
)

// VoteResult is the thread after a vote together with the caller's vote
// state. A nil Direction means the caller has no vote on the thread.
type VoteResult struct {
	Thread    models.Thread     `json:"thread"`
	Direction *models.Direction `json:"direction"`
}

type tally struct {
	up, down int
}

func (t *tally) add(d models.Direction, n int) {
	if d == models.DirectionUp {
		t.up += n
	} else {
		t.down += n
	}
}

func (t tally) assignments() map[string]any {
	cols := make(map[string]any, 2)
	if t.up != 0 {
		cols["upvotes"] = gorm.Expr("upvotes + ?", t.up)
	}
	if t.down != 0 {
		cols["downvotes"] = gorm.Expr("downvotes + ?", t.down)
	}
	return cols
}

// CastVote applies the caller's vote on a thread:
//
//	no vote      + d  -> vote d,  tally(d) + 1
//	vote d       + d  -> no vote, tally(d) - 1
//	vote d       + d' -> vote d', tally(d) - 1, tally(d') + 1
//
// The ledger write and the tally change commit together or not at all. The
// thread row is locked for the duration, so votes on one thread, including
// rapid repeats by the same user, apply one after another.
func (s *Service) CastVote(ctx context.Context, threadID, userID int, direction models.Direction) (*VoteResult, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: direction must be %q or %q", ErrValidation, models.DirectionUp, models.DirectionDown)
	}

	var result VoteResult
	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.loadAuthor(tx, userID); err != nil {
			return err
		}
		if _, err := s.lookupThread(tx.Clauses(clause.Locking{Strength: "UPDATE"}), threadID); err != nil {
			return err
		}

		var delta tally
		var vote models.Vote
		err := tx.Where("thread_id = ? AND user_id = ?", threadID, userID).First(&vote).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote = models.Vote{ThreadID: threadID, UserID: userID, Direction: direction}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			delta.add(direction, 1)
			result.Direction = &direction
		case err != nil:
			return err
		case vote.Direction == direction:
			if err := tx.Delete(&vote).Error; err != nil {
				return err
			}
			delta.add(direction, -1)
		default:
			delta.add(vote.Direction, -1)
			delta.add(direction, 1)
			if err := tx.Model(&vote).Update("direction", direction).Error; err != nil {
				return err
			}
			result.Direction = &direction
		}

		res := tx.Model(&models.Thread{}).Where("id = ?", threadID).UpdateColumns(delta.assignments())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("tally update touched %d rows", res.RowsAffected)
		}

		return tx.First(&result.Thread, threadID).Error
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CurrentVote returns the caller's vote direction on a thread, or nil when
// the caller has none or is anonymous.
func (s *Service) CurrentVote(ctx context.Context, threadID, userID int) (*models.Direction, error) {
	if userID <= 0 {
		return nil, nil
	}
	var vote models.Vote
	err := s.db.WithContext(ctx).Where("thread_id = ? AND user_id = ?", threadID, userID).First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current vote: %w", err)
	}
	return &vote.Direction, nil
}
