package notify

import (
	"context"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/emilythestrangee/forum/backend/internal/config"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

// maxBodyRunes keeps notifications within a single SMS segment.
const maxBodyRunes = 160

type MessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMS texts thread authors when someone replies to their thread.
type SMS struct {
	api  MessageCreator
	from string
}

func NewSMS(conf config.Twilio) *SMS {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: conf.AccountSID,
		Password: conf.AuthToken,
	})
	return &SMS{api: client.Api, from: conf.FromNumber}
}

func NewSMSWithCreator(api MessageCreator, from string) *SMS {
	return &SMS{api: api, from: from}
}

// ReplyPosted sends the notification. Authors without a phone number are
// skipped.
func (s *SMS) ReplyPosted(ctx context.Context, author models.User, thread models.Thread, reply models.Reply) error {
	if author.Phone == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(author.Phone)
	params.SetFrom(s.from)
	params.SetBody(replyBody(thread, reply))

	msg, err := s.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}
	if msg != nil && msg.Sid != nil {
		log.Printf("[NOTIFY] sms %s sent to user %d for reply %d", *msg.Sid, author.ID, reply.ID)
	}
	return nil
}

func replyBody(thread models.Thread, reply models.Reply) string {
	body := fmt.Sprintf("%s replied to %q: %s", reply.AuthorName, thread.Title, reply.Content)
	if utf8.RuneCountInString(body) <= maxBodyRunes {
		return body
	}
	runes := []rune(body)
	return string(runes[:maxBodyRunes-1]) + "…"
}
