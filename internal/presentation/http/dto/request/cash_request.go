package request

// OpenDayRequest opens today's cash float with the counted opening balance
type OpenDayRequest struct {
	OpeningBalance float64 `json:"opening_balance" binding:"gte=0"`
}

// CloseDayRequest closes the open session with the operator's physical count
type CloseDayRequest struct {
	ActualClosing float64 `json:"actual_closing" binding:"gte=0"`
}
