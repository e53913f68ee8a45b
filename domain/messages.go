package domain

import (
	"fmt"
	"time"
)

// DirectMessage is a private note between two actors. Only read and written
// through the direct_messages endpoints; never federated by this core.
type DirectMessage struct {
	Id          int64
	Guid        string
	Uri         string
	ParentUri   string
	SenderId    int64
	RecipientId int64
	Title       string
	Body        string
	Seen        bool
	CreatedAt   time.Time
}

func (m *DirectMessage) ToString() string {
	return fmt.Sprintf("\n\tId: %d \n\tSenderId: %d \n\tRecipientId: %d \n\tCreatedAt: %s)", m.Id, m.SenderId, m.RecipientId, m.CreatedAt)
}

type SaveDirectMessage struct {
	SenderId    int64
	RecipientId int64
	Title       string
	Body        string
	ReplyToUri  string
}
