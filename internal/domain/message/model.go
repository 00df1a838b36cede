package message

import (
	"time"

	"github.com/google/uuid"
)

// Message is user-to-user mail. Sender and receiver are user references,
// so any role pair can converse.
type Message struct {
	ID         uuid.UUID `db:"id" json:"id"`
	SenderID   uuid.UUID `db:"sender_id" json:"sender_id"`
	ReceiverID uuid.UUID `db:"receiver_id" json:"receiver_id"`
	Body       string    `db:"body" json:"body"`
	Type       string    `db:"message_type" json:"message_type"`
	Read       bool      `db:"is_read" json:"is_read"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
