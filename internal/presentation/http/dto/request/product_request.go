package request

// CreateProductRequest represents a create product request. Money fields are
// decimal major units; the service converts to cents.
type CreateProductRequest struct {
	CategoryID        *string `json:"category_id"`
	Name              string  `json:"name" binding:"required,min=1,max=255"`
	Code              string  `json:"code"` // generated when empty
	Price             float64 `json:"price" binding:"required,gt=0"`
	Cost              float64 `json:"cost" binding:"gte=0"`
	Stock             int     `json:"stock" binding:"gte=0"`
	LowStockThreshold int     `json:"low_stock_threshold" binding:"gte=0"`
}

// UpdateProductRequest represents an update product request
type UpdateProductRequest struct {
	CategoryID        *string  `json:"category_id"`
	Name              *string  `json:"name"`
	Code              *string  `json:"code"`
	Price             *float64 `json:"price"`
	Cost              *float64 `json:"cost"`
	Stock             *int     `json:"stock"`
	LowStockThreshold *int     `json:"low_stock_threshold"`
}

// CreateCategoryRequest represents a create category request
type CreateCategoryRequest struct {
	Name          string  `json:"name" binding:"required,min=1,max=255"`
	PricingPolicy string  `json:"pricing_policy"` // STANDARD or FIXED_MARGIN_PERCENT
	MarginPercent float64 `json:"margin_percent"`
}

// UpdateCategoryRequest represents an update category request
type UpdateCategoryRequest struct {
	Name          *string  `json:"name"`
	PricingPolicy *string  `json:"pricing_policy"`
	MarginPercent *float64 `json:"margin_percent"`
}
