// Package filter parses raw query strings into the closed set of listing
// facets. Parsing is total: malformed input is dropped or corrected, never
// rejected, and unknown keys are ignored.
package filter

import (
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"storefront-gateway/internal/domain"
)

// Sort orders accepted by the listing pipeline.
const (
	SortRecommended = "recommended"
	SortPriceAsc    = "price-asc"
	SortPriceDesc   = "price-desc"
	SortNewest      = "newest"
	SortOldest      = "oldest"
)

// Pagination bounds.
const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

var validSorts = map[string]bool{
	SortRecommended: true,
	SortPriceAsc:    true,
	SortPriceDesc:   true,
	SortNewest:      true,
	SortOldest:      true,
}

var validConditions = map[string]bool{
	domain.ConditionNew:         true,
	domain.ConditionUsed:        true,
	domain.ConditionRefurbished: true,
}

var validPriceTypes = map[string]bool{
	domain.PriceTypeFixed:      true,
	domain.PriceTypeNegotiable: true,
}

// Filter is the normalized facet set for one listing query. The query
// string is its only persisted representation.
type Filter struct {
	Query         string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	LocationState string
	LocationLGA   string
	PriceType     string
	ItemCondition string
	AmountInStock *int
	Sort          string
	Page          int
	PerPage       int
}

// Default returns the filter applied when no query string is present.
func Default() Filter {
	return Filter{Sort: SortRecommended, Page: 1, PerPage: DefaultPerPage}
}

// Parse builds a normalized Filter from raw query parameters. It is a pure
// function: the same values always produce the same filter, and no field
// ever survives in an invalid state. When both price bounds are present and
// inverted they are swapped, so MinPrice <= MaxPrice always holds.
func Parse(values url.Values) Filter {
	f := Default()

	f.Query = values.Get("q")

	f.MinPrice = parsePrice(values.Get("minPrice"))
	f.MaxPrice = parsePrice(values.Get("maxPrice"))
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		f.MinPrice, f.MaxPrice = f.MaxPrice, f.MinPrice
	}

	f.LocationState = values.Get("location_state")
	if f.LocationState != "" {
		// location_lga is a dependent facet: meaningless without a state.
		f.LocationLGA = values.Get("location_lga")
	}

	if pt := values.Get("price_type"); validPriceTypes[pt] {
		f.PriceType = pt
	}
	if ic := values.Get("item_condition"); validConditions[ic] {
		f.ItemCondition = ic
	}
	f.AmountInStock = parseNonNegativeInt(values.Get("amount_in_stock"))

	if s := values.Get("sort"); validSorts[s] {
		f.Sort = s
	}

	// Unlike the other numeric facets, out-of-range pagination is clamped
	// into bounds rather than dropped; only non-numeric input falls back to
	// the defaults.
	if p, err := strconv.Atoi(values.Get("page")); err == nil {
		f.Page = ClampPage(p)
	}
	if pp, err := strconv.Atoi(values.Get("perPage")); err == nil {
		f.PerPage = ClampPerPage(pp)
	}

	return f
}

// Values serializes the filter back to query parameters, the inverse of
// Parse for normalized filters.
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	if f.MinPrice != nil {
		v.Set("minPrice", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		v.Set("maxPrice", f.MaxPrice.String())
	}
	if f.LocationState != "" {
		v.Set("location_state", f.LocationState)
		if f.LocationLGA != "" {
			v.Set("location_lga", f.LocationLGA)
		}
	}
	if f.PriceType != "" {
		v.Set("price_type", f.PriceType)
	}
	if f.ItemCondition != "" {
		v.Set("item_condition", f.ItemCondition)
	}
	if f.AmountInStock != nil {
		v.Set("amount_in_stock", strconv.Itoa(*f.AmountInStock))
	}
	v.Set("sort", f.Sort)
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("perPage", strconv.Itoa(f.PerPage))
	return v
}

// Equal compares two filters field by field, treating price bounds by
// numeric value.
func (f Filter) Equal(o Filter) bool {
	return f.Query == o.Query &&
		decimalEqual(f.MinPrice, o.MinPrice) &&
		decimalEqual(f.MaxPrice, o.MaxPrice) &&
		f.LocationState == o.LocationState &&
		f.LocationLGA == o.LocationLGA &&
		f.PriceType == o.PriceType &&
		f.ItemCondition == o.ItemCondition &&
		intPtrEqual(f.AmountInStock, o.AmountInStock) &&
		f.Sort == o.Sort &&
		f.Page == o.Page &&
		f.PerPage == o.PerPage
}

// ClampPage bounds page numbers to >= 1.
func ClampPage(p int) int {
	if p < 1 {
		return 1
	}
	return p
}

// ClampPerPage bounds page sizes to [1, MaxPerPage].
func ClampPerPage(pp int) int {
	if pp < 1 {
		return 1
	}
	if pp > MaxPerPage {
		return MaxPerPage
	}
	return pp
}

func parsePrice(raw string) *decimal.Decimal {
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil
	}
	return &d
}

func parseNonNegativeInt(raw string) *int {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func decimalEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
