package flows

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/shopspring/decimal"

	"github.com/dyike/QuantumGPT/consts"
	"github.com/dyike/QuantumGPT/internal/dataflows"
	"github.com/dyike/QuantumGPT/internal/utils"
	"github.com/dyike/QuantumGPT/models"
)

const notAvailable = "not available"

var strategyTemplate = prompt.FromMessages(schema.GoTemplate,
	schema.SystemMessage(utils.MustLoadPrompt("strategy_system")),
	schema.UserMessage(utils.MustLoadPrompt("strategy_user")),
)

type strategyInput struct {
	Request  models.StrategyRequest
	Snapshot *models.MarketSnapshot
}

// StrategyFlow suggests a trading strategy for one asset.
type StrategyFlow struct {
	lookup   dataflows.Lookup
	runnable compose.Runnable[*strategyInput, *models.StrategyResult]
	opts     *options
}

func NewStrategyFlow(ctx context.Context, cm model.BaseChatModel, lookup dataflows.Lookup, opts ...Option) (*StrategyFlow, error) {
	if cm == nil {
		return nil, fmt.Errorf("strategy flow: chat model is required")
	}
	if lookup == nil {
		return nil, fmt.Errorf("strategy flow: market data lookup is required")
	}

	g := compose.NewGraph[*strategyInput, *models.StrategyResult](
		compose.WithGenLocalState(func(ctx context.Context) *models.StrategyState {
			return &models.StrategyState{}
		}),
	)
	_ = g.AddLambdaNode(consts.StrategyLoad, compose.InvokableLambdaWithOption(loadStrategyMessages))
	_ = g.AddChatModelNode(consts.StrategyAgent, cm)
	_ = g.AddLambdaNode(consts.StrategyNormalize, compose.InvokableLambdaWithOption(normalizeStrategy))

	_ = g.AddEdge(compose.START, consts.StrategyLoad)
	_ = g.AddEdge(consts.StrategyLoad, consts.StrategyAgent)
	_ = g.AddEdge(consts.StrategyAgent, consts.StrategyNormalize)
	_ = g.AddEdge(consts.StrategyNormalize, compose.END)

	r, err := g.Compile(ctx, compose.WithGraphName(consts.StrategyGraphName))
	if err != nil {
		return nil, fmt.Errorf("compile strategy graph: %w", err)
	}
	return &StrategyFlow{lookup: lookup, runnable: r, opts: newOptions(opts)}, nil
}

// Suggest never fails on model or market data problems: those produce a
// fallback result. Only invalid requests and canceled contexts are errors.
func (f *StrategyFlow) Suggest(ctx context.Context, req models.StrategyRequest) (*models.StrategyResult, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log.Printf("[StrategyFlow] %s risk=%s sentiment=%q", req.Cryptocurrency, req.RiskTolerance, req.Sentiment)

	snap, err := f.lookup.Fetch(ctx, req.Cryptocurrency)
	if err != nil {
		log.Printf("[StrategyFlow] market data lookup failed for %s: %v", req.Cryptocurrency, err)
		snap = nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var runOpts []compose.Option
	if len(f.opts.handlers) > 0 {
		runOpts = append(runOpts, compose.WithCallbacks(f.opts.handlers...))
	}
	res, err := f.runnable.Invoke(ctx, &strategyInput{Request: req, Snapshot: snap}, runOpts...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("[StrategyFlow] model output unusable for %s, returning fallback: %v", req.Cryptocurrency, err)
		return Fallback(snap, req.Cryptocurrency), nil
	}
	return res, nil
}

func loadStrategyMessages(ctx context.Context, in *strategyInput, opts ...any) (output []*schema.Message, err error) {
	err = compose.ProcessState[*models.StrategyState](ctx, func(_ context.Context, state *models.StrategyState) error {
		state.Request = in.Request
		state.Snapshot = in.Snapshot

		msgs, ferr := strategyTemplate.Format(ctx, strategyVars(in.Request, in.Snapshot))
		if ferr != nil {
			return ferr
		}
		output = msgs
		state.Messages = append(state.Messages, msgs...)
		return nil
	})
	return output, err
}

func normalizeStrategy(ctx context.Context, msg *schema.Message, opts ...any) (output *models.StrategyResult, err error) {
	err = compose.ProcessState[*models.StrategyState](ctx, func(_ context.Context, state *models.StrategyState) error {
		if msg != nil {
			state.Messages = append(state.Messages, msg)
		}
		raw, perr := ParseStrategy(msg)
		if perr != nil {
			return perr
		}
		output = Normalize(raw, state.Snapshot, state.Request.Cryptocurrency)
		if output.CurrentPrice == nil {
			log.Printf("[StrategyFlow] no price for %s, forcing no-trade", state.Request.Cryptocurrency)
		}
		return nil
	})
	return output, err
}

func strategyVars(req models.StrategyRequest, snap *models.MarketSnapshot) map[string]any {
	vars := map[string]any{
		"Cryptocurrency": req.Cryptocurrency,
		"RiskTolerance":  string(req.RiskTolerance),
		"Sentiment":      string(req.Sentiment),
		"Disclaimer":     consts.Disclaimer,
		"Price":          notAvailable,
		"Volume":         notAvailable,
		"Change":         notAvailable,
	}
	if snap == nil {
		return vars
	}
	if snap.Price != nil {
		vars["Price"] = "$" + formatNumber(*snap.Price)
	}
	if snap.Volume24h != nil {
		vars["Volume"] = "$" + formatNumber(*snap.Volume24h)
	}
	if snap.PriceChange24hPercent != nil {
		vars["Change"] = formatNumber(*snap.PriceChange24hPercent) + "%"
	}
	return vars
}

func formatNumber(v float64) string {
	return decimal.NewFromFloat(v).String()
}
