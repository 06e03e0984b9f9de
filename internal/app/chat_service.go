package app

import (
	"context"
	"fmt"
	"time"

	"prochecka/internal/domain"
)

// chatHistoryWindow caps how many stored turns are forwarded to the LLM.
const chatHistoryWindow = 20

// ChatService forwards conversation history to the external LLM provider
// and persists the transcript per owner. User transcripts go to the chat
// history store; guest transcripts accumulate on the guest session so that
// conversion can copy them later.
type ChatService struct {
	client domain.ChatClient
	chats  domain.ChatHistoryRepository
	guests domain.GuestSessionRepository
	now    func() time.Time
}

// NewChatService creates a ChatService backed by the given client and
// repositories. A nil client disables chat; Send then fails with ErrUpstream.
func NewChatService(client domain.ChatClient, chats domain.ChatHistoryRepository, guests domain.GuestSessionRepository) *ChatService {
	return &ChatService{client: client, chats: chats, guests: guests, now: time.Now}
}

// Send appends the user's message to the owner's transcript, obtains the
// assistant reply and persists both turns. Provider failures surface as
// ErrUpstream; nothing is persisted in that case.
func (s *ChatService) Send(ctx context.Context, owner domain.Owner, text string) (domain.ChatMessage, error) {
	history, err := s.History(ctx, owner, chatHistoryWindow)
	if err != nil {
		return domain.ChatMessage{}, err
	}

	userMsg := domain.ChatMessage{Role: "user", Text: text, Timestamp: s.now()}
	history = append(history, userMsg)

	if s.client == nil {
		return domain.ChatMessage{}, fmt.Errorf("%w: chat provider not configured", domain.ErrUpstream)
	}
	replyText, err := s.client.Reply(ctx, history)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	reply := domain.ChatMessage{Role: "assistant", Text: replyText, Timestamp: s.now()}

	if owner.IsUser() {
		err = s.chats.AppendChatMessages(ctx, owner.UserID, []domain.ChatMessage{userMsg, reply})
	} else {
		err = s.appendGuestMessages(ctx, owner.GuestToken, userMsg, reply)
	}
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return reply, nil
}

// History returns the owner's transcript, oldest first, up to limit turns.
func (s *ChatService) History(ctx context.Context, owner domain.Owner, limit int) ([]domain.ChatMessage, error) {
	if owner.IsUser() {
		return s.chats.ListChatMessages(ctx, owner.UserID, limit)
	}

	sess, err := s.guests.GetGuestSession(ctx, owner.GuestToken)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.ConvertedToUserID != nil || s.now().After(sess.ExpiresAt) {
		return nil, domain.ErrNotFound
	}
	msgs := sess.Data.Messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (s *ChatService) appendGuestMessages(ctx context.Context, token string, msgs ...domain.ChatMessage) error {
	sess, err := s.guests.GetGuestSession(ctx, token)
	if err != nil {
		return err
	}
	if sess == nil || sess.ConvertedToUserID != nil || s.now().After(sess.ExpiresAt) {
		return domain.ErrNotFound
	}
	data := sess.Data
	data.Messages = append(append([]domain.ChatMessage{}, data.Messages...), msgs...)
	_, err = s.guests.UpdateGuestSession(ctx, token, data, sess.RiskScore)
	return err
}
