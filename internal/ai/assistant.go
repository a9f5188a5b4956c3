package ai

import (
	"context"
	"errors"
)

// ErrDisabled is returned by assistants that were not configured.
var ErrDisabled = errors.New("ai assistant is disabled")

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one earlier message of a conversation.
type Turn struct {
	Role string `json:"role" validate:"required,oneof=user model"`
	Text string `json:"text" validate:"required"`
}

type ChatRequest struct {
	Message    string
	History    []Turn
	Preference string
}

type ChatReply struct {
	Text  string
	Model string
}

// Assistant answers free-form questions about cards.
type Assistant interface {
	Reply(ctx context.Context, req ChatRequest) (*ChatReply, error)
}

type disabled struct{}

// Disabled returns an assistant that always fails with ErrDisabled.
func Disabled() Assistant { return disabled{} }

func (disabled) Reply(context.Context, ChatRequest) (*ChatReply, error) {
	return nil, ErrDisabled
}
