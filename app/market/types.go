package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price is the eBay Browse API money shape; Value arrives as a string
type Price struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// Decimal parses the price value. ok is false for a missing or
// unparseable value, in which case the listing is skipped by callers.
func (p Price) Decimal() (decimal.Decimal, bool) {
	if p.Value == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(p.Value)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

type Image struct {
	ImageURL string `json:"imageUrl"`
}

// Listing is a single item summary returned by the Browse API
type Listing struct {
	ItemID        string     `json:"itemId"`
	Title         string     `json:"title"`
	Price         Price      `json:"price"`
	ItemWebURL    string     `json:"itemWebUrl"`
	Image         *Image     `json:"image,omitempty"`
	ItemEndDate   *time.Time `json:"itemEndDate,omitempty"`
	BuyingOptions []string   `json:"buyingOptions,omitempty"`
	Condition     string     `json:"condition,omitempty"`
}

type searchResponse struct {
	Total         int          `json:"total"`
	ItemSummaries []Listing    `json:"itemSummaries"`
	Warnings      []apiWarning `json:"warnings,omitempty"`
}

type apiWarning struct {
	ErrorID  int    `json:"errorId"`
	Message  string `json:"message"`
	Category string `json:"category"`
}

// BuildFilter translates a monitor's listing-type and condition settings
// into a Browse API filter expression. Returns "" when no filter applies.
func BuildFilter(listingType, condition string) string {
	var parts []string

	switch listingType {
	case "auction":
		parts = append(parts, "buyingOptions:{AUCTION}")
	case "buy_it_now":
		parts = append(parts, "buyingOptions:{FIXED_PRICE}")
	}

	switch condition {
	case "New":
		parts = append(parts, "conditions:{NEW}")
	case "Used":
		parts = append(parts, "conditions:{USED}")
	}

	filter := ""
	for i, p := range parts {
		if i > 0 {
			filter += ","
		}
		filter += p
	}
	return filter
}
