package conversation

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		conv    *Conversation
		wantErr bool
	}{
		{
			name: "valid conversation",
			conv: &Conversation{Messages: []Message{
				{Role: RoleUser, Text: "hello"},
				{Role: RoleAssistant, Text: "hi, I'm an AI assistant"},
			}},
			wantErr: false,
		},
		{
			name:    "nil conversation",
			conv:    nil,
			wantErr: true,
		},
		{
			name:    "no messages",
			conv:    &Conversation{},
			wantErr: true,
		},
		{
			name: "unknown role",
			conv: &Conversation{Messages: []Message{
				{Role: "moderator", Text: "hello"},
			}},
			wantErr: true,
		},
		{
			name: "empty text",
			conv: &Conversation{Messages: []Message{
				{Role: RoleUser, Text: "   "},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.conv.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var invalidInput *InvalidInputError
				if !errors.As(err, &invalidInput) {
					t.Errorf("expected *InvalidInputError, got %T", err)
				}
			}
		})
	}
}

func TestParseTranscript(t *testing.T) {
	t.Run("basic transcript", func(t *testing.T) {
		conv, err := ParseTranscript("user: I feel sad\nassistant: I'm sorry to hear that")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(conv.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
		}
		if conv.Messages[0].Role != RoleUser || conv.Messages[0].Text != "I feel sad" {
			t.Errorf("unexpected first message: %+v", conv.Messages[0])
		}
		if conv.Messages[1].Role != RoleAssistant {
			t.Errorf("unexpected second message role: %s", conv.Messages[1].Role)
		}
	})

	t.Run("continuation lines", func(t *testing.T) {
		conv, err := ParseTranscript("user: first line\nsecond line\nassistant: reply")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(conv.Messages) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
		}
		if conv.Messages[0].Text != "first line\nsecond line" {
			t.Errorf("continuation not appended: %q", conv.Messages[0].Text)
		}
	})

	t.Run("colon inside text", func(t *testing.T) {
		conv, err := ParseTranscript("user: note: this matters")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if conv.Messages[0].Text != "note: this matters" {
			t.Errorf("unexpected text: %q", conv.Messages[0].Text)
		}
	})

	t.Run("leading continuation is rejected", func(t *testing.T) {
		if _, err := ParseTranscript("no role here"); err == nil {
			t.Error("expected error for transcript without role prefix")
		}
	})

	t.Run("empty transcript is rejected", func(t *testing.T) {
		if _, err := ParseTranscript("\n\n"); err == nil {
			t.Error("expected error for empty transcript")
		}
	})
}

func TestByRole(t *testing.T) {
	conv := &Conversation{Messages: []Message{
		{Role: RoleUser, Text: "a"},
		{Role: RoleAssistant, Text: "b"},
		{Role: RoleUser, Text: "c"},
	}}

	users := conv.ByRole(RoleUser)
	if len(users) != 2 || users[0].Text != "a" || users[1].Text != "c" {
		t.Errorf("ByRole(user) = %+v", users)
	}
	if got := conv.ByRole(RoleSystem); len(got) != 0 {
		t.Errorf("ByRole(system) should be empty, got %+v", got)
	}
}

func TestFullText(t *testing.T) {
	conv := &Conversation{Messages: []Message{
		{Role: RoleUser, Text: "one"},
		{Role: RoleAssistant, Text: "two"},
	}}
	if got := conv.FullText(); got != "one\ntwo" {
		t.Errorf("FullText() = %q", got)
	}
}
