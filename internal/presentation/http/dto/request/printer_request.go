package request

// PrintReceiptRequest asks for a committed sale's receipt
type PrintReceiptRequest struct {
	TransactionID string `json:"transaction_id" binding:"required,uuid"`
}
