package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item condition facet values.
const (
	ConditionNew         = "new"
	ConditionUsed        = "used"
	ConditionRefurbished = "refurbished"
)

// Price type facet values.
const (
	PriceTypeFixed      = "fixed"
	PriceTypeNegotiable = "negotiable"
)

// Sale type values.
const (
	SaleTypeWholesale = "wholesale"
	SaleTypeRetail    = "retail"
)

// PriceInputModeQuote marks products listed without a price (buyer requests
// a quote), so Price may legitimately be absent.
const PriceInputModeQuote = "quote"

// Product is a vendor listing. Each product belongs to exactly one
// BusinessProfile and one category.
type Product struct {
	ID             string           `json:"id"`
	Slug           string           `json:"slug"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	PriceInputMode string           `json:"price_input_mode,omitempty"`
	Images         []string         `json:"images,omitempty"`
	CategoryID     string           `json:"category_id"`
	BusinessID     string           `json:"business_id"`
	LocationState  string           `json:"location_state,omitempty"`
	LocationLGA    string           `json:"location_lga,omitempty"`
	ItemCondition  string           `json:"item_condition,omitempty"`
	PriceType      string           `json:"price_type,omitempty"`
	SaleType       string           `json:"sale_type,omitempty"`
	AmountInStock  int              `json:"amount_in_stock"`
	CreatedAt      time.Time        `json:"created_at"`
}
