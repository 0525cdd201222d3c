package entity

import "time"

// StoredConversation is the stub backend's persisted record.
type StoredConversation struct {
	Id        string
	UserId    string
	Title     string
	Summary   string
	Type      string
	Messages  []StoredMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

type StoredMessage struct {
	User string
	Bot  string
}
