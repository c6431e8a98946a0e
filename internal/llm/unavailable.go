package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Unavailable stands in for a chat model that could not be configured.
// Every call fails with the configuration error, so flows degrade the same
// way they do when the provider is down.
type Unavailable struct {
	Err error
}

func (u *Unavailable) Generate(context.Context, []*schema.Message, ...model.Option) (*schema.Message, error) {
	return nil, u.err()
}

func (u *Unavailable) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, u.err()
}

func (u *Unavailable) WithTools([]*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return u, nil
}

func (u *Unavailable) err() error {
	return fmt.Errorf("chat model unavailable: %w", u.Err)
}

var _ model.ToolCallingChatModel = (*Unavailable)(nil)
