package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
)

// DaySessionRepository defines the interface for cash-float session records
type DaySessionRepository interface {
	Create(ctx context.Context, session *entity.DaySession) error
	GetOpen(ctx context.Context, branchID uuid.UUID, day time.Time) (*entity.DaySession, error)
	GetByDay(ctx context.Context, branchID uuid.UUID, day time.Time) (*entity.DaySession, error)
	Close(ctx context.Context, id uuid.UUID, actualClosing int64, closedBy uuid.UUID, closedAt time.Time) error
	ListRecent(ctx context.Context, branchID uuid.UUID, limit int) ([]entity.DaySession, error)
}
