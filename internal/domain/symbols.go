package domain

import (
	"sort"
	"strings"
)

// DefaultQuoteAssets is the quote allowlist used when an integration does not
// configure its own. Longest-match wins during suffix stripping.
var DefaultQuoteAssets = []string{"USDT", "USDC", "BUSD", "FDUSD", "BTC", "ETH", "BNB", "USD", "EUR", "RUB", "TRY"}

// SplitSymbol splits a venue pair symbol into base and quote assets.
// Explicit separators ("/" or "-") win; otherwise the longest allowlisted
// quote suffix is stripped. A symbol that matches neither comes back with an
// empty quote.
func SplitSymbol(symbol string, quoteAssets []string) (base string, quote string) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", ""
	}

	for _, sep := range []string{"/", "-"} {
		if idx := strings.Index(s, sep); idx > 0 && idx < len(s)-1 {
			return s[:idx], s[idx+1:]
		}
	}

	if len(quoteAssets) == 0 {
		quoteAssets = DefaultQuoteAssets
	}

	// Longest suffix first so USDT beats USD on e.g. BTCUSDT
	sorted := make([]string, len(quoteAssets))
	copy(sorted, quoteAssets)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	for _, q := range sorted {
		q = strings.ToUpper(q)
		if len(s) > len(q) && strings.HasSuffix(s, q) {
			return s[:len(s)-len(q)], q
		}
	}

	return s, ""
}

// fiatCodes is the ISO currency set used to tell currencies apart from
// RU-market instruments on broker venues.
var fiatCodes = map[string]struct{}{
	"USD": {}, "EUR": {}, "RUB": {}, "GBP": {}, "CHF": {}, "JPY": {},
	"CNY": {}, "HKD": {}, "TRY": {}, "KZT": {}, "AMD": {}, "GEL": {},
	"AED": {}, "ILS": {}, "UZS": {}, "BYN": {},
}

// IsFiat reports whether the symbol is a known fiat currency code
func IsFiat(symbol string) bool {
	_, ok := fiatCodes[strings.ToUpper(symbol)]
	return ok
}

// AssetTypeFor derives the asset type of a symbol on a venue: crypto venues
// yield crypto assets, broker venues yield currencies for fiat codes and
// RU-market instruments otherwise.
func AssetTypeFor(venue VenueKind, symbol string) AssetType {
	switch venue {
	case VenueTBank:
		if IsFiat(symbol) {
			return AssetTypeCurrency
		}
		return AssetTypeStockRU
	default:
		return AssetTypeCrypto
	}
}
