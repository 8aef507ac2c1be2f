package models

import (
	"time"

	"github.com/linkuphq/linkup/pkg/timeutil"
)

// Message is a direct message between two users. Immutable once created
// except for the read flag.
type Message struct {
	ID          string
	SenderID    string
	RecipientID string
	Content     string

	// IsRead flips when the recipient opens the conversation.
	IsRead bool

	CreatedAt time.Time

	// Denormalized sender fields filled by conversation queries.
	SenderUsername string
	SenderName     string
	SenderSurname  string
	SenderImage    string
}

// MessageView is the wire shape for a message, shared by the HTTP API and
// the real-time channel.
type MessageView struct {
	ID                string `json:"id"`
	Content           string `json:"content"`
	SenderID          string `json:"sender_id"`
	SenderName        string `json:"sender_name"`
	SenderImage       string `json:"sender_image"`
	RecipientID       string `json:"recipient_id"`
	CreatedAtRelative string `json:"created_at"`
	CreatedAtISO      string `json:"created_at_iso"`
}

// View builds the wire representation of the message.
func (m *Message) View() MessageView {
	name := m.SenderName
	if m.SenderSurname != "" {
		name += " " + m.SenderSurname
	}
	return MessageView{
		ID:                m.ID,
		Content:           m.Content,
		SenderID:          m.SenderID,
		SenderName:        name,
		SenderImage:       m.SenderImage,
		RecipientID:       m.RecipientID,
		CreatedAtRelative: timeutil.MessageTime(m.CreatedAt),
		CreatedAtISO:      timeutil.ISO(m.CreatedAt),
	}
}
