package flows

import (
	"context"
	"errors"
	"io"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
)

type options struct {
	handlers []callbacks.Handler
	maxStep  int
	useTools bool
}

type Option func(*options)

// WithCallbacks attaches eino callback handlers to every run.
func WithCallbacks(h ...callbacks.Handler) Option {
	return func(o *options) {
		o.handlers = append(o.handlers, h...)
	}
}

// WithMaxStep bounds the tool-calling loop of the screener agent.
func WithMaxStep(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxStep = n
		}
	}
}

// WithTools binds the market data tool to the screener.
func WithTools(enabled bool) Option {
	return func(o *options) {
		o.useTools = enabled
	}
}

func newOptions(opts []Option) *options {
	o := &options{maxStep: 12}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

// toolCallChecker reports whether a streamed model reply asks for tools.
func toolCallChecker(ctx context.Context, sr *schema.StreamReader[*schema.Message]) (bool, error) {
	defer sr.Close()
	for {
		msg, err := sr.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		if len(msg.ToolCalls) > 0 {
			return true, nil
		}
	}
}
