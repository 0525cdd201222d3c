package constant

const (
	RouteConversationAdd    = "/conversation/add"
	RouteConversationRead   = "/conversation/read"
	RouteConversationList   = "/conversation/list"
	RouteConversationDelete = "/conversation/delete"
	RouteConversationUpdate = "/conversation/update"
	RouteConversationTitle  = "/conversation/gen_title"
	RouteContent            = "/content/"

	ApproachChatConversation = "chatconversation"
	DefaultUser              = "user"
	ConversationTypeChat     = "chat"

	UnknownErrorMessage = "Unknown error"

	DefaultTopK      = 3
	MinTopK          = 1
	MaxTopK          = 50
	TitleWordLimit   = 4
	SummaryCharLimit = 120
)

// ExampleQuestions are offered when the session is empty.
var ExampleQuestions = []string{
	"How can I get access to SAP Learning Hub?",
	"What is Citrix?",
	"Can you list top 5 functionalities of Azure?",
}
