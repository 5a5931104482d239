package normalizer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
)

// Draft is a normalized transaction ready for asset resolution and insertion.
// It carries everything the persistence writer needs except the database
// asset ID.
type Draft struct {
	Symbol        string
	AssetType     domain.AssetType
	Type          domain.TransactionType
	Amount        decimal.Decimal
	Price         *decimal.Decimal
	PriceCurrency string
	Fee           *decimal.Decimal
	FeeCurrency   string
	DedupeKey     string
	ExecutedAt    time.Time
	Raw           map[string]any
}

// MarketURL returns the asset market reference recorded on first sight
func (d Draft) MarketURL(venue domain.VenueKind) string {
	return venue.String() + ":" + d.Symbol
}

// Outcome is the result of normalizing activity lines. Lines that cannot be
// normalized are counted, not errored: one malformed record must never sink a
// whole snapshot.
type Outcome struct {
	Drafts []Draft

	SkippedUnmapped      int
	SkippedMissingAsset  int
	SkippedMissingAmount int
}

// Merge folds another outcome into this one
func (o *Outcome) Merge(other Outcome) {
	o.Drafts = append(o.Drafts, other.Drafts...)
	o.SkippedUnmapped += other.SkippedUnmapped
	o.SkippedMissingAsset += other.SkippedMissingAsset
	o.SkippedMissingAmount += other.SkippedMissingAmount
}

// Skipped returns the total number of skipped lines
func (o Outcome) Skipped() int {
	return o.SkippedUnmapped + o.SkippedMissingAsset + o.SkippedMissingAmount
}

// Normalize maps one venue activity line onto zero or more transaction
// drafts. Conversions expand into two legs; trades resolve their asset from
// the pair symbol; transfers use the symbol as-is.
func Normalize(line domain.ActivityLine, conn domain.Connection) Outcome {
	switch line.Type {
	case domain.TransactionConversion:
		return normalizeConversion(line, conn)
	case domain.TransactionBuy, domain.TransactionSell,
		domain.TransactionFuturesBuy, domain.TransactionFuturesSell:
		return normalizeTrade(line, conn)
	case domain.TransactionDeposit, domain.TransactionWithdrawal:
		return normalizeTransfer(line, conn)
	default:
		return Outcome{SkippedUnmapped: 1}
	}
}

// NormalizeAll normalizes a whole snapshot's activity lines
func NormalizeAll(lines []domain.ActivityLine, conn domain.Connection) Outcome {
	var out Outcome
	for _, line := range lines {
		out.Merge(Normalize(line, conn))
	}
	return out
}

func normalizeTrade(line domain.ActivityLine, conn domain.Connection) Outcome {
	base := strings.ToUpper(line.BaseAsset)
	quote := strings.ToUpper(line.QuoteAsset)
	if base == "" {
		base, quote = domain.SplitSymbol(line.Symbol, conn.Params.QuoteAssets)
	}
	if base == "" {
		return Outcome{SkippedMissingAsset: 1}
	}
	if line.Amount == nil || line.Amount.IsZero() {
		return Outcome{SkippedMissingAmount: 1}
	}

	draft := Draft{
		Symbol:     base,
		AssetType:  domain.AssetTypeFor(conn.Venue, base),
		Type:       line.Type,
		Amount:     line.Amount.Abs(),
		Fee:        line.Fee,
		DedupeKey:  domain.DedupeKey(line, ""),
		ExecutedAt: line.ExecutedAt,
		Raw:        line.Raw,
	}
	if line.Fee != nil {
		draft.FeeCurrency = strings.ToUpper(line.FeeCurrency)
	}
	if line.Price != nil && !line.Price.IsZero() {
		draft.Price = line.Price
		draft.PriceCurrency = quote
	}
	return Outcome{Drafts: []Draft{draft}}
}

func normalizeTransfer(line domain.ActivityLine, conn domain.Connection) Outcome {
	symbol := strings.ToUpper(line.Symbol)
	if symbol == "" {
		return Outcome{SkippedMissingAsset: 1}
	}
	if line.Amount == nil || line.Amount.IsZero() {
		return Outcome{SkippedMissingAmount: 1}
	}

	draft := Draft{
		Symbol:     symbol,
		AssetType:  domain.AssetTypeFor(conn.Venue, symbol),
		Type:       line.Type,
		Amount:     line.Amount.Abs(),
		Fee:        line.Fee,
		DedupeKey:  domain.DedupeKey(line, ""),
		ExecutedAt: line.ExecutedAt,
		Raw:        line.Raw,
	}
	if line.Fee != nil {
		draft.FeeCurrency = strings.ToUpper(line.FeeCurrency)
	}
	return Outcome{Drafts: []Draft{draft}}
}

// normalizeConversion expands one convert record into a from-leg and a
// to-leg. The line carries the source amount in Amount and the target amount
// in Price. Each leg is normalized on its own: a leg missing its symbol or
// amount is counted skipped while the other leg still yields a draft.
func normalizeConversion(line domain.ActivityLine, conn domain.Connection) Outcome {
	from := strings.ToUpper(line.BaseAsset)
	to := strings.ToUpper(line.QuoteAsset)

	fromAmount := decimal.Zero
	if line.Amount != nil {
		fromAmount = line.Amount.Abs()
	}
	toAmount := decimal.Zero
	if line.Price != nil {
		toAmount = line.Price.Abs()
	}

	var out Outcome
	out.Merge(conversionLeg(line, conn, from, fromAmount, to, toAmount, domain.LegSuffixFrom))
	out.Merge(conversionLeg(line, conn, to, toAmount, from, fromAmount, domain.LegSuffixTo))
	return out
}

// conversionLeg normalizes one side of a convert. The cross price in the
// counter asset's units is attached only when the counter side is fully known.
func conversionLeg(line domain.ActivityLine, conn domain.Connection, symbol string, amount decimal.Decimal,
	counter string, counterAmount decimal.Decimal, suffix string) Outcome {
	if symbol == "" {
		return Outcome{SkippedMissingAsset: 1}
	}
	if amount.IsZero() {
		return Outcome{SkippedMissingAmount: 1}
	}

	draft := Draft{
		Symbol:     symbol,
		AssetType:  domain.AssetTypeFor(conn.Venue, symbol),
		Type:       domain.TransactionConversion,
		Amount:     amount,
		DedupeKey:  domain.DedupeKey(line, suffix),
		ExecutedAt: line.ExecutedAt,
		Raw:        line.Raw,
	}
	if counter != "" && !counterAmount.IsZero() {
		price := counterAmount.Div(amount)
		draft.Price = &price
		draft.PriceCurrency = counter
	}
	return Outcome{Drafts: []Draft{draft}}
}
