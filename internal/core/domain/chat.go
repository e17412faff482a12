package domain

// Chat roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation
type ChatMessage struct {
	Role    string `json:"role" example:"user"`
	Content string `json:"content" example:"I need a login screen"`
}

// ChatRequest is an inbound chat turn with its prior history
type ChatRequest struct {
	Message             string        `json:"message"`
	ConversationHistory []ChatMessage `json:"conversation_history"`
	ConversationID      string        `json:"conversation_id,omitempty"`
}

// ChatResult is the reply to a chat turn.
// Estimate is set only when an estimate could be produced for the message.
type ChatResult struct {
	Response       string  `json:"response"`
	Estimate       *Totals `json:"estimate,omitempty"`
	ConversationID string  `json:"conversation_id"`
}
