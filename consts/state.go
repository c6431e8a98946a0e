package consts

const (
	// Local client state keys
	Key_Watchlist   = "watchlist"
	Key_PriceAlerts = "priceAlerts"
)

const (
	// Websocket event types
	Event_AlertTriggered     = "alert.triggered"
	Event_Overview           = "overview"
	Event_EngineReloaded     = "engine.reloaded"
	Event_EngineReloadFailed = "engine.reload_failed"
)

const DefaultClientID = "local"

// Disclaimer is attached verbatim to every strategy result.
const Disclaimer = "QuantumGPT, powered by Blocksmith AI, was developed following extensive research in quantitative finance, market intelligence, and applied machine learning. Our models are built to deliver adaptive trading insights, deep behavioral analytics, and tailored strategies through real-time data analysis and visualization.\n\nWhile QuantumGPT provides cutting-edge analytical tools, it is not a financial advisor. All outputs are for educational and informational purposes only. Trading and investing carry risks, and decisions should be made with careful due diligence and consideration of your financial situation. Blocksmith AI assumes no liability for losses or outcomes related to the use of QuantumGPT."
