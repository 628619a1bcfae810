package handler

import (
	"math"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/domain/enum"
)

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserEmail extracts the user email from the Gin context
func GetUserEmail(c *gin.Context) string {
	email, exists := c.Get("user_email")
	if !exists {
		return ""
	}
	return email.(string)
}

// GetUserRole extracts the user role from the Gin context
func GetUserRole(c *gin.Context) enum.UserRole {
	roleVal, exists := c.Get("user_role")
	if !exists {
		return ""
	}
	role, ok := roleVal.(enum.UserRole)
	if !ok {
		return ""
	}
	return role
}

// GetBranchID extracts the operator's branch from the Gin context
func GetBranchID(c *gin.Context) *uuid.UUID {
	branchVal, exists := c.Get("branch_id")
	if !exists {
		return nil
	}
	branchID, ok := branchVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &branchID
}

// toCents converts a decimal money amount to cents
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// parseDate parses a YYYY-MM-DD request field; empty means the zero time,
// which the services treat as "now".
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

// parseUUIDPtr converts an optional string field to an optional UUID
func parseUUIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
