package llm

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/cloudwego/eino/callbacks"
	ecmodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// FlowLogger logs graph components as they run. Tool calls and tool results
// are the interesting part; plain tokens are not logged.
type FlowLogger struct {
	Prefix string
}

func NewFlowLogger(prefix string) *FlowLogger {
	return &FlowLogger{Prefix: prefix}
}

func (cb *FlowLogger) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	log.Printf("[%s] start %s (%s/%s)", cb.Prefix, info.Name, info.Component, info.Type)
	return ctx
}

func (cb *FlowLogger) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if out := ecmodel.ConvCallbackOutput(output); out != nil && out.Message != nil {
		cb.logMessage(info, out.Message)
	}
	return ctx
}

func (cb *FlowLogger) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	log.Printf("[%s] error in %s: %v", cb.Prefix, info.Name, err)
	return ctx
}

func (cb *FlowLogger) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	defer input.Close()
	return ctx
}

func (cb *FlowLogger) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	go func() {
		defer output.Close()
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[%s] stream callback panic: %v", cb.Prefix, err)
			}
		}()
		for {
			frame, err := output.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				log.Printf("[%s] stream recv error: %v", cb.Prefix, err)
				return
			}
			switch v := frame.(type) {
			case *schema.Message:
				cb.logMessage(info, v)
			case *ecmodel.CallbackOutput:
				cb.logMessage(info, v.Message)
			}
		}
	}()
	return ctx
}

func (cb *FlowLogger) logMessage(info *callbacks.RunInfo, msg *schema.Message) {
	if msg == nil {
		return
	}
	for _, tc := range msg.ToolCalls {
		if tc.Function.Name != "" {
			log.Printf("[%s] %s requested tool %s(%s)", cb.Prefix, info.Name, tc.Function.Name, tc.Function.Arguments)
		}
	}
	if msg.ResponseMeta != nil && msg.ResponseMeta.FinishReason != "" {
		log.Printf("[%s] %s finished: %s", cb.Prefix, info.Name, msg.ResponseMeta.FinishReason)
	}
}

var _ callbacks.Handler = (*FlowLogger)(nil)
