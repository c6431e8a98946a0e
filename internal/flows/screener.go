package flows

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/QuantumGPT/consts"
	"github.com/dyike/QuantumGPT/internal/dataflows"
	"github.com/dyike/QuantumGPT/internal/tools"
	"github.com/dyike/QuantumGPT/internal/utils"
	"github.com/dyike/QuantumGPT/models"
)

var (
	screenerTemplate = prompt.FromMessages(schema.GoTemplate,
		schema.SystemMessage(utils.MustLoadPrompt("screener")),
		schema.UserMessage(utils.MustLoadPrompt("screener_user")),
	)
	screenerToolsTemplate = prompt.FromMessages(schema.GoTemplate,
		schema.SystemMessage(utils.MustLoadPrompt("screener_tools")),
		schema.UserMessage(utils.MustLoadPrompt("screener_user")),
	)
)

// ScreenerFlow proposes assets matching free-text criteria.
type ScreenerFlow struct {
	runnable   compose.Runnable[models.ScreenerRequest, *models.ScreenerResult]
	toolsBound bool
	opts       *options
}

func NewScreenerFlow(ctx context.Context, cm model.ToolCallingChatModel, lookup dataflows.Lookup, opts ...Option) (*ScreenerFlow, error) {
	if cm == nil {
		return nil, fmt.Errorf("screener flow: chat model is required")
	}
	o := newOptions(opts)
	toolsBound := o.useTools && lookup != nil

	g := compose.NewGraph[models.ScreenerRequest, *models.ScreenerResult](
		compose.WithGenLocalState(func(ctx context.Context) *models.ScreenerState {
			return &models.ScreenerState{ToolsBound: toolsBound}
		}),
	)
	_ = g.AddLambdaNode(consts.ScreenerLoad, compose.InvokableLambdaWithOption(loadScreenerMessages))

	if toolsBound {
		agent, err := react.NewAgent(ctx, &react.AgentConfig{
			MaxStep:          o.maxStep,
			ToolCallingModel: cm,
			ToolsConfig: compose.ToolsNodeConfig{
				Tools: []tool.BaseTool{tools.NewMarketDataTool(lookup)},
			},
			StreamToolCallChecker: toolCallChecker,
		})
		if err != nil {
			return nil, fmt.Errorf("create screener agent: %w", err)
		}
		agentLambda, err := compose.AnyLambda(agent.Generate, agent.Stream, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("create screener agent lambda: %w", err)
		}
		_ = g.AddLambdaNode(consts.ScreenerAgent, agentLambda)
	} else {
		_ = g.AddChatModelNode(consts.ScreenerAgent, cm)
	}

	_ = g.AddLambdaNode(consts.ScreenerReduce, compose.InvokableLambdaWithOption(reduceScreener))

	_ = g.AddEdge(compose.START, consts.ScreenerLoad)
	_ = g.AddEdge(consts.ScreenerLoad, consts.ScreenerAgent)
	_ = g.AddEdge(consts.ScreenerAgent, consts.ScreenerReduce)
	_ = g.AddEdge(consts.ScreenerReduce, compose.END)

	r, err := g.Compile(ctx, compose.WithGraphName(consts.ScreenerGraphName))
	if err != nil {
		return nil, fmt.Errorf("compile screener graph: %w", err)
	}
	return &ScreenerFlow{runnable: r, toolsBound: toolsBound, opts: o}, nil
}

func (f *ScreenerFlow) ToolsBound() bool { return f.toolsBound }

// Screen returns an error when the model fails or its output does not
// match the result schema.
func (f *ScreenerFlow) Screen(ctx context.Context, req models.ScreenerRequest) (*models.ScreenerResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log.Printf("[ScreenerFlow] screening (tools=%v): %q", f.toolsBound, req.Criteria)

	ctx = tools.WithLedger(ctx, tools.NewLedger())
	var runOpts []compose.Option
	if len(f.opts.handlers) > 0 {
		runOpts = append(runOpts, compose.WithCallbacks(f.opts.handlers...))
	}
	res, err := f.runnable.Invoke(ctx, req, runOpts...)
	if err != nil {
		log.Printf("[ScreenerFlow] failed: %v", err)
		return nil, fmt.Errorf("screener flow: %w", err)
	}
	return res, nil
}

func loadScreenerMessages(ctx context.Context, req models.ScreenerRequest, opts ...any) (output []*schema.Message, err error) {
	err = compose.ProcessState[*models.ScreenerState](ctx, func(_ context.Context, state *models.ScreenerState) error {
		state.Request = req

		tpl := screenerTemplate
		if state.ToolsBound {
			tpl = screenerToolsTemplate
		}
		msgs, ferr := tpl.Format(ctx, map[string]any{
			"Criteria": req.Criteria,
			"Tool":     consts.MarketDataTool,
		})
		if ferr != nil {
			return ferr
		}
		output = msgs
		state.Messages = append(state.Messages, msgs...)
		return nil
	})
	return output, err
}

func reduceScreener(ctx context.Context, msg *schema.Message, opts ...any) (output *models.ScreenerResult, err error) {
	err = compose.ProcessState[*models.ScreenerState](ctx, func(_ context.Context, state *models.ScreenerState) error {
		if msg != nil {
			state.Messages = append(state.Messages, msg)
		}
		res, perr := ParseScreener(msg)
		if perr != nil {
			return perr
		}
		if state.ToolsBound {
			reconcile(res, tools.LedgerFrom(ctx))
		}
		output = res
		return nil
	})
	return output, err
}

// reconcile replaces model-reported figures with what the tool actually
// returned. Assets the tool was never asked about, or returned null for,
// carry no price or volume.
func reconcile(res *models.ScreenerResult, ledger *tools.Ledger) {
	for i := range res.Results {
		asset := &res.Results[i]
		var snap *models.MarketSnapshot
		if ledger != nil {
			snap, _ = ledger.Lookup(asset.Symbol)
		}
		if snap == nil {
			if asset.Price != nil || asset.Volume != nil {
				log.Printf("[ScreenerFlow] dropping untrusted figures for %s", asset.Symbol)
			}
			asset.Price, asset.Volume = nil, nil
			continue
		}
		asset.Price = copyFloat(snap.Price)
		asset.Volume = copyFloat(snap.Volume24h)
	}
}
