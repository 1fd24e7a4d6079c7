package notify

import (
	"time"
)

// Kind classifies a notification record.
type Kind string

const (
	KindChatMessage       Kind = "chat_message"
	KindEventRegistration Kind = "event_registration"
	KindTeamInvitation    Kind = "team_invitation"
	KindTeamJoinRequest   Kind = "team_join_request"
	KindTeamJoinAccepted  Kind = "team_join_accepted"
	KindTeamJoinRejected  Kind = "team_join_rejected"
	KindTest              Kind = "test"
)

// ResponseStatus tags a team notification with its one-way outcome.
type ResponseStatus string

const (
	ResponseAccepted ResponseStatus = "accepted"
	ResponseDeclined ResponseStatus = "declined"
)

// Notification is one persisted record owned by its recipient. CreatedAt is
// assigned by the store at commit time; IsRead only ever flips false to true.
type Notification struct {
	ID             string
	UserID         string // recipient
	SenderID       string
	SenderName     string
	SenderImageURL string
	Title          string
	Message        string
	Kind           Kind
	IsRead         bool
	ResponseStatus ResponseStatus
	CreatedAt      time.Time

	// Correlation fields, populated depending on Kind.
	ChatID        string
	MessageID     string
	EventID       string
	EventName     string
	EventImageURL string
	TeamID        string
	TeamName      string
}

// Message is one chat message as delivered by a subscription.
type Message struct {
	ID        string
	ChatID    string
	SenderID  string
	Content   string
	Timestamp time.Time
}

// ConversationEvent is delivered when a conversation the listening user
// participates in is added or modified. Err carries subscription errors
// in-band; the event is otherwise empty.
type ConversationEvent struct {
	ChatID       string
	Participants []string
	Err          error
}

// MessageEvent is delivered for each new message in a watched conversation.
type MessageEvent struct {
	Message Message
	Err     error
}

// Team is a hackathon team document. A user id appears in at most one of
// Members and PendingMembers at any time.
type Team struct {
	ID             string
	Name           string
	LeaderID       string
	Members        []string
	PendingMembers []string
}

// UserProfile is the read-only projection of a user used for display fields.
type UserProfile struct {
	ID              string
	Name            string
	ProfileImageURL string
}
