package flows

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/QuantumGPT/models"
)

// scriptedModel replays canned replies in order and records every input.
type scriptedModel struct {
	mu      sync.Mutex
	replies []*schema.Message
	err     error
	inputs  [][]*schema.Message
}

func newScriptedModel(replies ...*schema.Message) *scriptedModel {
	return &scriptedModel{replies: replies}
}

func (m *scriptedModel) next(input []*schema.Message) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.replies) == 0 {
		return nil, errors.New("scripted model: no more replies")
	}
	msg := m.replies[0]
	m.replies = m.replies[1:]
	return msg, nil
}

func (m *scriptedModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	return m.next(input)
}

func (m *scriptedModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.next(input)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *scriptedModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func (m *scriptedModel) firstInput() []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.inputs) == 0 {
		return nil
	}
	return m.inputs[0]
}

type mapLookup map[string]*models.MarketSnapshot

func (l mapLookup) Fetch(_ context.Context, symbol string) (*models.MarketSnapshot, error) {
	return l[symbol], nil
}

type failingLookup struct{}

func (failingLookup) Fetch(context.Context, string) (*models.MarketSnapshot, error) {
	return nil, errors.New("dial tcp: network is unreachable")
}

func toolCall(id, name, args string) *schema.Message {
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID:       id,
		Type:     "function",
		Function: schema.FunctionCall{Name: name, Arguments: args},
	}})
}
