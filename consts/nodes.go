package consts

const (
	// 策略流程节点
	StrategyLoad      = "strategy_load"
	StrategyAgent     = "strategy_agent"
	StrategyNormalize = "strategy_normalize"

	// 筛选流程节点
	ScreenerLoad   = "screener_load"
	ScreenerAgent  = "screener_agent"
	ScreenerReduce = "screener_reduce"
)

const (
	StrategyGraphName = "QuantumGPT-Strategy"
	ScreenerGraphName = "QuantumGPT-Screener"
)

// MarketDataTool is the name the model sees for the market data lookup.
const MarketDataTool = "getCryptoMarketData"
