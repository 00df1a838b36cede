package message

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*Message, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListForUser returns messages the user sent or received, newest first.
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Message, int, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
}
