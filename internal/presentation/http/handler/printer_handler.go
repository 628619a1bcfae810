package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/application/service"
	"github.com/dukapos/dukapos-api/internal/presentation/http/dto/request"
	"github.com/dukapos/dukapos-api/internal/presentation/http/dto/response"
)

// PrinterHandler handles thermal printer HTTP requests
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns printer connection status
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	response.OK(c, "Printer status retrieved successfully", h.printerService.GetStatus())
}

// TestPrint sends a test page to the printer
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	receipt, err := h.printerService.TestPrint()
	if err != nil {
		// Return the formatted receipt anyway so a disabled printer still
		// gives the client something to render.
		response.OK(c, "Printer unavailable, returning receipt data", gin.H{
			"printed": false,
			"receipt": receipt,
			"error":   err.Error(),
		})
		return
	}

	response.OK(c, "Test page printed", gin.H{
		"printed": true,
		"receipt": receipt,
	})
}

// PrintReceipt prints a committed sale's receipt
func (h *PrinterHandler) PrintReceipt(c *gin.Context) {
	var req request.PrintReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	txID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		response.BadRequest(c, "Invalid transaction ID")
		return
	}

	receipt, err := h.printerService.PrintSaleReceipt(c.Request.Context(), txID)
	if err != nil {
		if receipt != nil {
			response.OK(c, "Printer unavailable, returning receipt data", gin.H{
				"printed": false,
				"receipt": receipt,
				"error":   err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt printed", gin.H{
		"printed": true,
		"receipt": receipt,
	})
}
