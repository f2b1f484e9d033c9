// Package utils provides small shared helpers: NSE ticker normalization
// and IST market-clock utilities.
package utils

import "strings"

// NormalizeTicker normalizes a raw symbol to the canonical NSE display form:
// uppercased, trimmed, without the $ chat prefix or an exchange suffix.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	ticker = strings.TrimPrefix(ticker, "$")
	return FromYahooTicker(ticker)
}

// ToYahooTicker converts an NSE symbol to Yahoo Finance format by appending
// the .NS exchange suffix. Symbols that already carry a suffix or are index
// tickers (^NSEI etc.) are left untouched.
func ToYahooTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	if strings.Contains(ticker, ".") || strings.HasPrefix(ticker, "^") {
		return ticker
	}
	return ticker + ".NS"
}

// FromYahooTicker strips the .NS or .BO suffix to get the display ticker.
func FromYahooTicker(yfTicker string) string {
	yfTicker = strings.TrimSuffix(yfTicker, ".NS")
	yfTicker = strings.TrimSuffix(yfTicker, ".BO")
	return yfTicker
}
