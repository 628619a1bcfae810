package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/application/service"
	"github.com/dukapos/dukapos-api/internal/presentation/http/dto/request"
	"github.com/dukapos/dukapos-api/internal/presentation/http/dto/response"
)

// CashHandler handles the daily cash session HTTP requests
type CashHandler struct {
	cashService *service.CashService
}

// NewCashHandler creates a new cash handler
func NewCashHandler(cashService *service.CashService) *CashHandler {
	return &CashHandler{cashService: cashService}
}

func (h *CashHandler) operator(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
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

// OpenDay opens today's cash float
func (h *CashHandler) OpenDay(c *gin.Context) {
	userID, branchID, ok := h.operator(c)
	if !ok {
		return
	}

	var req request.OpenDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	session, err := h.cashService.OpenDay(c.Request.Context(), branchID, userID, toCents(req.OpeningBalance))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Cash session opened", session)
}

// Status returns the open session's running reconciliation
func (h *CashHandler) Status(c *gin.Context) {
	_, branchID, ok := h.operator(c)
	if !ok {
		return
	}

	report, err := h.cashService.DrawerStatus(c.Request.Context(), branchID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Drawer status retrieved successfully", report)
}

// CloseDay closes the open session with the operator's physical count
func (h *CashHandler) CloseDay(c *gin.Context) {
	userID, branchID, ok := h.operator(c)
	if !ok {
		return
	}

	var req request.CloseDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	report, err := h.cashService.CloseDay(c.Request.Context(), branchID, userID, toCents(req.ActualClosing))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cash session closed", report)
}

// History lists the branch's recent day sessions
func (h *CashHandler) History(c *gin.Context) {
	_, branchID, ok := h.operator(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	sessions, err := h.cashService.History(c.Request.Context(), branchID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Session history retrieved successfully", sessions)
}
