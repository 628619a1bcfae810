package request

// PartyRequest represents a create/update request shared by customers and
// vendors
type PartyRequest struct {
	Name    string  `json:"name" binding:"required,min=1,max=255"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

// UpdatePartyRequest represents a partial update to a party's directory fields
type UpdatePartyRequest struct {
	Name    string  `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}
