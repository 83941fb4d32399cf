package conversation

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether the role is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is a single turn in a conversation.
type Message struct {
	Role      Role      `json:"role" yaml:"role"`
	Text      string    `json:"text" yaml:"text"`
	Timestamp time.Time `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// Conversation is an ordered transcript submitted for evaluation.
// It is immutable once constructed for a given evaluation; detectors
// receive it as a read-only snapshot.
type Conversation struct {
	// ID is an opaque caller-supplied identifier for the conversation.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Messages is the ordered sequence of turns.
	Messages []Message `json:"messages" yaml:"messages"`

	// Metadata carries opaque caller-supplied key/value pairs.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// InvalidInputError indicates a conversation that cannot be evaluated.
// It is fatal and rejected before detector fan-out.
type InvalidInputError struct {
	Reason string
}

// Error returns the error message.
func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid conversation: %s", e.Reason)
}

// Validate checks that the conversation is well-formed: at least one
// message, every message has a known role and non-empty text.
func (c *Conversation) Validate() error {
	if c == nil {
		return &InvalidInputError{Reason: "conversation is nil"}
	}
	if len(c.Messages) == 0 {
		return &InvalidInputError{Reason: "conversation has no messages"}
	}
	for i, msg := range c.Messages {
		if !msg.Role.Valid() {
			return &InvalidInputError{Reason: fmt.Sprintf("message %d has unknown role %q", i, msg.Role)}
		}
		if strings.TrimSpace(msg.Text) == "" {
			return &InvalidInputError{Reason: fmt.Sprintf("message %d has empty text", i)}
		}
	}
	return nil
}

// ByRole returns the messages authored by the given role, preserving order.
func (c *Conversation) ByRole(role Role) []Message {
	var out []Message
	for _, msg := range c.Messages {
		if msg.Role == role {
			out = append(out, msg)
		}
	}
	return out
}

// FullText concatenates all message texts separated by newlines.
// Used by detectors that operate on the whole transcript.
func (c *Conversation) FullText() string {
	var b strings.Builder
	for i, msg := range c.Messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(msg.Text)
	}
	return b.String()
}

// ParseTranscript parses a plain-text transcript where each line has the
// form "role: text" (e.g., "user: I had a great day!"). Lines without a
// recognized role prefix are appended to the previous message.
func ParseTranscript(text string) (*Conversation, error) {
	conv := &Conversation{}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		role, rest, found := cutRolePrefix(line)
		if !found {
			// Continuation of the previous message
			if n := len(conv.Messages); n > 0 {
				conv.Messages[n-1].Text += "\n" + line
				continue
			}
			return nil, &InvalidInputError{Reason: fmt.Sprintf("line %q has no role prefix", line)}
		}

		conv.Messages = append(conv.Messages, Message{Role: role, Text: rest})
	}

	if err := conv.Validate(); err != nil {
		return nil, err
	}
	return conv, nil
}

// cutRolePrefix splits "role: text" into a known role and the remainder.
func cutRolePrefix(line string) (Role, string, bool) {
	prefix, rest, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	role := Role(strings.ToLower(strings.TrimSpace(prefix)))
	if !role.Valid() {
		return "", "", false
	}
	return role, strings.TrimSpace(rest), true
}
