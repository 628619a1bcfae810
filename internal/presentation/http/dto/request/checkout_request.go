package request

// AddCartItemRequest adds a product to the operator's cart
type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
}

// UpdateCartItemRequest updates one cart line. Only the provided fields are
// applied. UnitPrice is decimal; DiscountValue is decimal for AMOUNT and a
// whole percent for PERCENT.
type UpdateCartItemRequest struct {
	Quantity      *int     `json:"quantity"`
	UnitPrice     *float64 `json:"unit_price"`
	DiscountValue *float64 `json:"discount_value"`
	DiscountKind  *string  `json:"discount_kind" binding:"omitempty,oneof=AMOUNT PERCENT"`
}

// CartDiscountRequest sets the cart-level discount
type CartDiscountRequest struct {
	Value float64 `json:"value" binding:"gte=0"`
	Kind  string  `json:"kind" binding:"required,oneof=AMOUNT PERCENT"`
}

// PaymentMethodRequest selects the settlement method for the cart
type PaymentMethodRequest struct {
	Method string `json:"method" binding:"required,oneof=CASH BANK CARD CREDIT CHEQUE"`
}

// ChequeRequest records cheque metadata for a CHEQUE sale
type ChequeRequest struct {
	Number string `json:"number" binding:"required"`
	Date   string `json:"date" binding:"required"` // YYYY-MM-DD
}

// AdvanceRequest toggles split payment and sets the up-front portion
type AdvanceRequest struct {
	Enabled bool     `json:"enabled"`
	Amount  *float64 `json:"amount"`
}

// CartCustomerRequest resolves the credit party for the sale. A null ID
// clears the selection.
type CartCustomerRequest struct {
	CustomerID *string `json:"customer_id" binding:"omitempty,uuid"`
}

// TenderedRequest records the cash handed over
type TenderedRequest struct {
	Amount float64 `json:"amount" binding:"gte=0"`
}
