package domain

import (
	"fmt"
	"time"
)

// ChatContext selects the persona used for a reply.
type ChatContext string

const (
	ChatContextGeneral  ChatContext = "general"
	ChatContextStory    ChatContext = "story"
	ChatContextLearning ChatContext = "learning"
)

func ParseChatContext(raw string) (ChatContext, error) {
	switch ChatContext(raw) {
	case ChatContextGeneral, ChatContextStory, ChatContextLearning:
		return ChatContext(raw), nil
	case "":
		return ChatContextGeneral, nil
	}
	return "", WrapError(ErrInvalidInput, "parse chat context", fmt.Errorf("unknown context %q", raw))
}

// ResponseType is a coarse classification of a reply, used by clients
// to decorate the message.
type ResponseType string

const (
	ResponseTypeAnswer        ResponseType = "answer"
	ResponseTypeEncouragement ResponseType = "encouragement"
	ResponseTypeHint          ResponseType = "hint"
	ResponseTypeNarration     ResponseType = "narration"
)

type ChatRequest struct {
	UserID       string      `json:"user_id"`
	StoryID      string      `json:"story_id,omitempty"`
	SessionToken string      `json:"session_token,omitempty"`
	Message      string      `json:"message"`
	Context      ChatContext `json:"context"`
}

type ChatReply struct {
	Message     string       `json:"message"`
	Type        ResponseType `json:"response_type"`
	Suggestions []string     `json:"suggestions,omitempty"`
	Progress    *Progress    `json:"progress,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}
