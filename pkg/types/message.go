package types

// MessageRole identifies who authored a conversation turn.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // RoleSystem marks the pinned directive that grounds the conversation.
	RoleUser      MessageRole = "user"      // RoleUser marks a message typed by the user.
	RoleAssistant MessageRole = "assistant" // RoleAssistant marks a reply produced by the completion provider.
)

// IsValid reports whether r is one of the known roles.
func (r MessageRole) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single conversation turn. Messages are treated as immutable
// once created; code that needs a different turn builds a new one.
type Message struct {
	Role    MessageRole
	Content string
}

// NewSystemMessage creates a system turn.
func NewSystemMessage(content string) *Message {
	return &Message{Role: RoleSystem, Content: content}
}

// NewUserMessage creates a user turn.
func NewUserMessage(content string) *Message {
	return &Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant turn.
func NewAssistantMessage(content string) *Message {
	return &Message{Role: RoleAssistant, Content: content}
}
