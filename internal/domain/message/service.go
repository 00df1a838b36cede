package message

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/identity"
	"github.com/hms/hms/internal/platform/apperr"
	"github.com/hms/hms/internal/platform/auth"
)

type Service struct {
	messages Repository
	users    identity.Repository
}

func NewService(messages Repository, users identity.Repository) *Service {
	return &Service{messages: messages, users: users}
}

type SendInput struct {
	ReceiverID uuid.UUID `json:"receiver_id"`
	Body       string    `json:"body"`
	Type       string    `json:"message_type"`
}

// Send delivers a message from the actor to an existing user.
func (s *Service) Send(ctx context.Context, actor auth.Actor, in SendInput) (*Message, error) {
	if err := auth.Require(actor, auth.OpSendMessage); err != nil {
		return nil, err
	}
	if in.Body == "" {
		return nil, apperr.Validation("message body is required")
	}
	if in.ReceiverID == actor.UserID {
		return nil, apperr.Validation("cannot message yourself")
	}
	if _, err := s.users.GetByID(ctx, in.ReceiverID); err != nil {
		return nil, err
	}
	if in.Type == "" {
		in.Type = "text"
	}

	m := &Message{
		SenderID:   actor.UserID,
		ReceiverID: in.ReceiverID,
		Body:       in.Body,
		Type:       in.Type,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Inbox lists the actor's sent and received messages, newest first.
func (s *Service) Inbox(ctx context.Context, actor auth.Actor, limit, offset int) ([]*Message, int, error) {
	return s.messages.ListForUser(ctx, actor.UserID, limit, offset)
}

// UnreadCount reports how many received messages the actor has not read.
func (s *Service) UnreadCount(ctx context.Context, actor auth.Actor) (int, error) {
	return s.messages.UnreadCount(ctx, actor.UserID)
}

// MarkRead flags a message read; only its receiver may do so.
func (s *Service) MarkRead(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Message, error) {
	m, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.ReceiverID != actor.UserID {
		return nil, apperr.Authorization("only the receiver marks a message read")
	}
	if m.Read {
		return m, nil
	}
	if err := s.messages.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	m.Read = true
	return m, nil
}

// Delete removes a message; only its sender may do so.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	m, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.SenderID != actor.UserID {
		return apperr.Authorization("only the sender deletes a message")
	}
	return s.messages.Delete(ctx, id)
}
