package enum

// PricingPolicy controls how the cost basis of a product is derived at sale time.
// STANDARD uses the product's recorded cost; FIXED_MARGIN_PERCENT derives cost
// from the sale price and the category's configured margin.
type PricingPolicy string

const (
	PricingStandard    PricingPolicy = "STANDARD"
	PricingFixedMargin PricingPolicy = "FIXED_MARGIN_PERCENT"
)
