package dataflows

import "strings"

// pairSuffixes are quote currencies stripped from trading pairs, longest first
// so BUSD wins over USD.
var pairSuffixes = []string{"BUSD", "USDT", "USDC", "USD", "DAI", "EUR", "GBP"}

// NormalizeSymbol turns "BINANCE:BTCUSDT" into "BTC". An exchange prefix is
// dropped and one pairing suffix is removed when something remains after it.
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	for _, suffix := range pairSuffixes {
		if len(s) > len(suffix) && strings.HasSuffix(s, suffix) {
			return s[:len(s)-len(suffix)]
		}
	}
	return s
}
