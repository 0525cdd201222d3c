package constant

const (
	EventSessionChanged         = "session.changed"
	EventConversationsRefreshed = "conversations.refreshed"
	EventConversationDeleted    = "conversation.deleted"

	BusTopicSession = "ragchat.session"

	NatsStreamName    = "RAGCHAT"
	NatsSubjectPrefix = "ragchat"
)
