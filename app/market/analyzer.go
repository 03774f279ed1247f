package market

import (
	"github.com/shopspring/decimal"
)

// Tier is the coarse deal bucket derived from the price ratio
type Tier int

const (
	TierNeutral Tier = iota
	TierBest
	TierGood
	TierBad
)

func (t Tier) String() string {
	switch t {
	case TierBest:
		return "best"
	case TierGood:
		return "good"
	case TierBad:
		return "bad"
	default:
		return "neutral"
	}
}

// Deal is the normalized classification of one listing price against
// the fair estimate
type Deal struct {
	Ratio decimal.Decimal // percent of fair price, 1 decimal place
	Label string
	Tier  Tier
	Color int
	Emoji string
}

// Qualifies reports whether the deal should trigger a notification:
// the severity tier says the listing is priced below the fair estimate.
func (d Deal) Qualifies() bool {
	return d.Tier == TierBest || d.Tier == TierGood
}

var (
	ratioSteal      = decimal.NewFromInt(85)
	ratioFair       = decimal.NewFromInt(100)
	ratioOverpriced = decimal.NewFromInt(120)
	hundred         = decimal.NewFromInt(100)
)

// FairPrice returns the arithmetic mean of the listing prices, rounded to
// 2 decimal places. Listings without a parseable price are excluded; ok is
// false when no usable prices remain.
func FairPrice(listings []Listing) (decimal.Decimal, bool) {
	sum := decimal.Zero
	count := int64(0)

	for _, l := range listings {
		price, ok := l.Price.Decimal()
		if !ok {
			continue
		}
		sum = sum.Add(price)
		count++
	}

	if count == 0 {
		return decimal.Zero, false
	}

	return sum.Div(decimal.NewFromInt(count)).Round(2), true
}

// DealMeter scores a listing price against the fair estimate. When the
// estimate is unavailable (or malformed, i.e. not positive) it returns the
// neutral "Unknown" sentinel rather than an error.
func DealMeter(currentPrice, fairPrice decimal.Decimal, ok bool) Deal {
	if !ok || !fairPrice.IsPositive() {
		return Deal{
			Ratio: hundred,
			Label: "Unknown",
			Tier:  TierNeutral,
			Color: 0x808080,
			Emoji: "❓",
		}
	}

	// Classification uses the exact ratio; only the reported value is rounded,
	// so a ratio of 120.01 is Overpriced even though it displays as 120.0.
	raw := currentPrice.Div(fairPrice).Mul(hundred)
	ratio := raw.Round(1)

	switch {
	case raw.LessThan(ratioSteal):
		return Deal{Ratio: ratio, Label: "STEAL", Tier: TierBest, Color: 0x00ff00, Emoji: "🔥"}
	case raw.LessThan(ratioFair):
		return Deal{Ratio: ratio, Label: "Great Deal", Tier: TierGood, Color: 0x90ee90, Emoji: "🙂"}
	case raw.LessThanOrEqual(ratioOverpriced):
		return Deal{Ratio: ratio, Label: "Fair", Tier: TierNeutral, Color: 0xffff00, Emoji: "😐"}
	default:
		return Deal{Ratio: ratio, Label: "Overpriced", Tier: TierBad, Color: 0xff0000, Emoji: "🛑"}
	}
}
