package dbmongo

import (
	"time"

	"thriveup/internal/notify"
)

type notificationDoc struct {
	ID             string    `bson:"_id"`
	UserID         string    `bson:"userId"`
	SenderID       string    `bson:"senderId,omitempty"`
	SenderName     string    `bson:"senderName,omitempty"`
	SenderImageURL string    `bson:"senderImageURL,omitempty"`
	Title          string    `bson:"title"`
	Message        string    `bson:"message"`
	Kind           string    `bson:"notificationType"`
	IsRead         bool      `bson:"isRead"`
	ResponseStatus string    `bson:"responseStatus,omitempty"`
	CreatedAt      time.Time `bson:"timestamp,omitempty"`
	ChatID         string    `bson:"chatId,omitempty"`
	MessageID      string    `bson:"messageId,omitempty"`
	EventID        string    `bson:"eventId,omitempty"`
	EventName      string    `bson:"eventName,omitempty"`
	EventImageURL  string    `bson:"eventImageURL,omitempty"`
	TeamID         string    `bson:"teamId,omitempty"`
	TeamName       string    `bson:"teamName,omitempty"`
}

func (d *notificationDoc) toDomain() *notify.Notification {
	return &notify.Notification{
		ID:             d.ID,
		UserID:         d.UserID,
		SenderID:       d.SenderID,
		SenderName:     d.SenderName,
		SenderImageURL: d.SenderImageURL,
		Title:          d.Title,
		Message:        d.Message,
		Kind:           notify.Kind(d.Kind),
		IsRead:         d.IsRead,
		ResponseStatus: notify.ResponseStatus(d.ResponseStatus),
		CreatedAt:      d.CreatedAt,
		ChatID:         d.ChatID,
		MessageID:      d.MessageID,
		EventID:        d.EventID,
		EventName:      d.EventName,
		EventImageURL:  d.EventImageURL,
		TeamID:         d.TeamID,
		TeamName:       d.TeamName,
	}
}

// fromDomain converts a notification, leaving CreatedAt zero: the store
// assigns the timestamp at commit time.
func fromDomain(n *notify.Notification) *notificationDoc {
	return &notificationDoc{
		ID:             n.ID,
		UserID:         n.UserID,
		SenderID:       n.SenderID,
		SenderName:     n.SenderName,
		SenderImageURL: n.SenderImageURL,
		Title:          n.Title,
		Message:        n.Message,
		Kind:           string(n.Kind),
		IsRead:         n.IsRead,
		ResponseStatus: string(n.ResponseStatus),
		ChatID:         n.ChatID,
		MessageID:      n.MessageID,
		EventID:        n.EventID,
		EventName:      n.EventName,
		EventImageURL:  n.EventImageURL,
		TeamID:         n.TeamID,
		TeamName:       n.TeamName,
	}
}

type chatDoc struct {
	ID           string   `bson:"_id"`
	Participants []string `bson:"participants"`
}

type messageDoc struct {
	ID        string    `bson:"_id"`
	ChatID    string    `bson:"chatId"`
	SenderID  string    `bson:"senderId"`
	Content   string    `bson:"messageContent"`
	Timestamp time.Time `bson:"timestamp"`
}

func (d *messageDoc) toDomain() notify.Message {
	return notify.Message{
		ID:        d.ID,
		ChatID:    d.ChatID,
		SenderID:  d.SenderID,
		Content:   d.Content,
		Timestamp: d.Timestamp,
	}
}

type counterDoc struct {
	ID          string `bson:"_id"`
	UserID      string `bson:"userId"`
	ChatID      string `bson:"chatId"`
	UnreadCount int64  `bson:"unreadCount"`
}

type teamDoc struct {
	ID             string   `bson:"_id"`
	Name           string   `bson:"name"`
	LeaderID       string   `bson:"leaderId"`
	Members        []string `bson:"members"`
	PendingMembers []string `bson:"pendingMembers"`
}

func (d *teamDoc) toDomain() *notify.Team {
	return &notify.Team{
		ID:             d.ID,
		Name:           d.Name,
		LeaderID:       d.LeaderID,
		Members:        d.Members,
		PendingMembers: d.PendingMembers,
	}
}
