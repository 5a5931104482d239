package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
)

// Conversion leg suffixes: one venue conversion record expands into two
// transactions whose keys differ only in the leg marker.
const (
	LegSuffixFrom = ":from"
	LegSuffixTo   = ":to"
)

// maxDedupeKeyLen bounds the dedupe_key column; longer keys are re-hashed
const maxDedupeKeyLen = 240

// externalIDKeys is the preference order for venue-supplied record identifiers
var externalIDKeys = []string{
	"id", "tradeId", "trade_id", "orderId", "order_id",
	"txId", "tx_id", "hash", "transferId", "uid",
}

// DedupeKey builds the stable idempotency key for an activity line. A
// venue-supplied identifier wins; without one the key is a SHA-256 over the
// line's canonical JSON shape, so re-fetching the same window yields the same
// key. legSuffix distinguishes the two legs of a conversion.
func DedupeKey(line ActivityLine, legSuffix string) string {
	key := string(line.Type) + ":"
	if ext := externalID(line.Raw); ext != "" {
		key += ext
	} else {
		key += hashLine(line)
	}
	key += legSuffix

	if len(key) > maxDedupeKeyLen {
		sum := sha256.Sum256([]byte(key))
		key = hex.EncodeToString(sum[:])
	}
	return key
}

// externalID returns the first venue identifier present in the raw payload
func externalID(raw map[string]any) string {
	for _, k := range externalIDKeys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case string:
			if val != "" {
				return val
			}
		case float64:
			return strconv.FormatFloat(val, 'f', -1, 64)
		case int64:
			return strconv.FormatInt(val, 10)
		case int:
			return strconv.Itoa(val)
		case uint64:
			return strconv.FormatUint(val, 10)
		case json.Number:
			return val.String()
		}
	}
	return ""
}

// hashLine hashes the identifying fields of a line. json.Marshal sorts map
// keys, so the payload is canonical.
func hashLine(line ActivityLine) string {
	payload := map[string]string{
		"type":        string(line.Type),
		"symbol":      line.Symbol,
		"executed_at": strconv.FormatInt(line.ExecutedAt.UnixMilli(), 10),
	}
	if line.Amount != nil {
		payload["amount"] = line.Amount.String()
	}
	if line.Price != nil {
		payload["price"] = line.Price.String()
	}
	if line.BaseAsset != "" {
		payload["base_asset"] = line.BaseAsset
	}
	if line.QuoteAsset != "" {
		payload["quote_asset"] = line.QuoteAsset
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// Marshal of map[string]string cannot fail; keep a deterministic fallback anyway
		data = fmt.Appendf(nil, "%s|%s|%d", line.Type, line.Symbol, line.ExecutedAt.UnixMilli())
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
