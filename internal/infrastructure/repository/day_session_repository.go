package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukapos/dukapos-api/internal/domain/entity"
	"github.com/dukapos/dukapos-api/internal/domain/enum"
	domainRepo "github.com/dukapos/dukapos-api/internal/domain/repository"
)

type daySessionRepository struct {
	db *gorm.DB
}

// NewDaySessionRepository creates a new day session repository
func NewDaySessionRepository(db *gorm.DB) domainRepo.DaySessionRepository {
	return &daySessionRepository{db: db}
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (r *daySessionRepository) Create(ctx context.Context, session *entity.DaySession) error {
	session.Date = dayOf(session.Date)
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *daySessionRepository) GetOpen(ctx context.Context, branchID uuid.UUID, day time.Time) (*entity.DaySession, error) {
	var session entity.DaySession
	err := r.db.WithContext(ctx).
		First(&session, "branch_id = ? AND date = ? AND status = ?",
			branchID, dayOf(day), enum.DayOpen).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &session, err
}

func (r *daySessionRepository) GetByDay(ctx context.Context, branchID uuid.UUID, day time.Time) (*entity.DaySession, error) {
	var session entity.DaySession
	err := r.db.WithContext(ctx).
		First(&session, "branch_id = ? AND date = ?", branchID, dayOf(day)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &session, err
}

// Close transitions an OPEN session to CLOSED with the operator's physical
// count. Closed sessions are immutable history, so the status guard makes a
// second close a no-op at the storage level.
func (r *daySessionRepository) Close(ctx context.Context, id uuid.UUID, actualClosing int64, closedBy uuid.UUID, closedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&entity.DaySession{}).
		Where("id = ? AND status = ?", id, enum.DayOpen).
		Updates(map[string]interface{}{
			"status":         enum.DayClosed,
			"actual_closing": actualClosing,
			"closed_by":      closedBy,
			"closed_at":      closedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *daySessionRepository) ListRecent(ctx context.Context, branchID uuid.UUID, limit int) ([]entity.DaySession, error) {
	var sessions []entity.DaySession
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		Order("date DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}
