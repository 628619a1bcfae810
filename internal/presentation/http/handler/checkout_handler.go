package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/application/service"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	"github.com/dukapos/dukapos-api/internal/presentation/http/dto/request"
	"github.com/dukapos/dukapos-api/internal/presentation/http/dto/response"
)

// CheckoutHandler handles the live POS terminal: cart commands and commit.
// Every route is scoped to the authenticated operator's own session.
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// operator resolves the authenticated operator and their branch. Cart work
// needs both; an operator without a branch assignment cannot sell.
func (h *CheckoutHandler) operator(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return uuid.Nil, uuid.Nil, false
	}
	branchID := GetBranchID(c)
	if branchID == nil {
		response.BadRequest(c, "Operator is not assigned to a branch")
		return uuid.Nil, uuid.Nil, false
	}
	return *userID, *branchID, true
}

// GetCart returns the operator's current cart
func (h *CheckoutHandler) GetCart(c *gin.Context) {
	userID, branchID, ok := h.operator(c)
	if !ok {
		return
	}

	response.OK(c, "Cart retrieved successfully", h.checkoutService.GetCart(userID, branchID))
}

// AddItem adds a product to the cart
func (h *CheckoutHandler) AddItem(c *gin.Context) {
	userID, branchID, ok := h.operator(c)
	if !ok {
		return
	}

	var req request.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	cart, err := h.checkoutService.AddLine(c.Request.Context(), userID, branchID, productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item added to cart", cart)
}

// UpdateItem applies the provided line fields: quantity, unit price, discount
func (h *CheckoutHandler) UpdateItem(c *gin.Context) {
	userID, branchID, ok := h.operator(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req request.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	var cart *service.CartView
	if req.Quantity != nil {
		cart, err = h.checkoutService.SetQuantity(userID, branchID, productID, *req.Quantity)
		if err != nil {
			response.Error(c, err)
			return
		}
	}
	if req.UnitPrice != nil {
		cart, err = h.checkoutService.SetLinePrice(userID, branchID, productID, toCents(*req.UnitPrice))
		if err != nil {
			response.Error(c, err)
			return
		}
	}
	if req.DiscountValue != nil {
		if req.DiscountKind == nil {
			response.BadRequest(c, "Discount kind is required with a discount value")
			return
		}
		kind := enum.DiscountKind(*req.DiscountKind)
		value := toCents(*req.DiscountValue)
		if kind == enum.DiscountPercent {
			value = int64(*req.DiscountValue)
		}
		cart, err = h.checkoutService.SetLineDiscount(userID, branchID, productID, value, kind)
		if err != nil {
			response.Error(c, err)
			return
		}
	}
	if cart == nil {
		cart = h.checkoutService.GetCart(userID, branchID)
	}

	response.OK(c, "Cart item updated", cart)
}

// RemoveItem removes a product from the cart
func (h *CheckoutHandler) RemoveItem(c *gin.Context) {
	userID, branchID, ok := h.operator(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	cart, err := h.checkoutService.RemoveLine(userID, branchID, productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed from cart", cart)
}

// SetDiscount sets the cart-level discount
func (h *CheckoutHandler) SetDiscount(c *gin.Context) {
	userID, branchID, ok := h.operator(c)
	if !ok {
		return
	}

	var req request.CartDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	kind := enum.DiscountKind(req.Kind)
	value := toCents(req.Value)
	if kind == enum.DiscountPercent {
		value = int64(req.Value)
	}

	cart := h.checkoutService.SetGlobalDiscount(userID, branchID, value, kind)
	response.OK(c, "Discount applied", cart)
}

// SetPaymentMethod selects the settlement method
func (h *CheckoutHandler) SetPaymentMethod(c *gin.Context) {
	userID, branchID, ok := h.operator(c)
	if !ok {
		return
	}

	var req request.PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.checkoutService.SelectPaymentMethod(userID, branchID, enum.PaymentMethod(req.Method))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment method selected", cart)
}

// SetCheque records cheque metadata
func (h *CheckoutHandler) SetCheque(c *gin.Context) {
	userID, branchID, ok := h.operator(c)
	if !ok {
		return
	}

	var req request.ChequeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		response.BadRequest(c, "Invalid cheque date")
		return
	}

	cart := h.checkoutService.SetCheque(userID, branchID, req.Number, date)
	response.OK(c, "Cheque details recorded", cart)
}

// SetAdvance toggles split payment and sets the up-front portion
func (h *CheckoutHandler) SetAdvance(c *gin.Context) {
	userID, branchID, ok := h.operator(c)
	if !ok {
		return
	}

	var req request.AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	cart := h.checkoutService.ToggleAdvance(userID, branchID, req.Enabled)
	if req.Enabled && req.Amount != nil {
		var err error
		cart, err = h.checkoutService.SetAdvanceAmount(userID, branchID, toCents(*req.Amount))
		if err != nil {
			response.Error(c, err)
			return
		}
	}

	response.OK(c, "Advance payment updated", cart)
}

// SetCustomer resolves the credit party for the sale
func (h *CheckoutHandler) SetCustomer(c *gin.Context) {
	userID, branchID, ok := h.operator(c)
	if !ok {
		return
	}

	var req request.CartCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	customerID, err := parseUUIDPtr(req.CustomerID)
	if err != nil {
		response.BadRequest(c, "Invalid customer ID")
		return
	}

	cart, err := h.checkoutService.SetCustomer(c.Request.Context(), userID, branchID, customerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Customer updated", cart)
}

// SetTendered records the cash handed over
func (h *CheckoutHandler) SetTendered(c *gin.Context) {
	userID, branchID, ok := h.operator(c)
	if !ok {
		return
	}

	var req request.TenderedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	cart := h.checkoutService.SetTendered(userID, branchID, toCents(req.Amount))
	response.OK(c, "Tendered amount recorded", cart)
}

// Abandon drops the operator's session
func (h *CheckoutHandler) Abandon(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	h.checkoutService.Abandon(*userID)
	response.OK(c, "Cart abandoned", nil)
}

// Commit finalizes the sale
func (h *CheckoutHandler) Commit(c *gin.Context) {
	userID, branchID, ok := h.operator(c)
	if !ok {
		return
	}

	result, err := h.checkoutService.Commit(c.Request.Context(), userID, branchID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Sale committed successfully", result)
}
