package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/reservation"
)

// AvailabilityChecker は機体の有効な予約との重複を検出する
type AvailabilityChecker struct {
	reservationRepo reservation.Repository
}

func NewAvailabilityChecker(rr reservation.Repository) *AvailabilityChecker {
	return &AvailabilityChecker{reservationRepo: rr}
}

// HasConflict は [start, end) が機体の有効な予約と重なるかを返す
// 接しているだけの時間帯は競合しない
func (c *AvailabilityChecker) HasConflict(ctx context.Context, aircraftID string, start, end time.Time) (bool, error) {
	return c.HasConflictExcluding(ctx, aircraftID, start, end, "")
}

// HasConflictExcluding は excludeID の予約を除いて判定する（更新用）
func (c *AvailabilityChecker) HasConflictExcluding(ctx context.Context, aircraftID string, start, end time.Time, excludeID string) (bool, error) {
	existing, err := c.reservationRepo.FindOverlapping(ctx, aircraftID, start, end, excludeID)
	if err != nil {
		return false, fmt.Errorf("空き状況の確認に失敗: %w", err)
	}
	requested := reservation.Window{Start: start, End: end}
	for _, r := range existing {
		if r.ID == excludeID && excludeID != "" {
			continue
		}
		if r.IsLive() && r.Window().Overlaps(requested) {
			return true, nil
		}
	}
	return false, nil
}
