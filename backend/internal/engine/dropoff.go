package engine

import (
	"context"
	"time"

	"socialpulse/backend/internal/graph"
	apperrors "socialpulse/backend/pkg/errors"
)

// DropOff compares engagement over two adjacent, equal-length windows
type DropOff struct {
	WindowDays int            `json:"window_days"`
	Current    *graph.Metrics `json:"current"`
	Previous   *graph.Metrics `json:"previous"`
	ChangePct  float64        `json:"change_pct"`
}

// EngagementDropOff computes engagement for the current window of
// windowDays ending now and the immediately preceding window of equal
// length, and reports the period-over-period change
func (e *Engine) EngagementDropOff(ctx context.Context, userID string, windowDays int) (*DropOff, error) {
	if err := validateIdentifier("user_id", userID); err != nil {
		return nil, err
	}
	if windowDays < 1 {
		return nil, apperrors.NewInvalidInput("window_days", "must be at least 1")
	}

	now := time.Now().UTC()
	curStart := now.AddDate(0, 0, -windowDays)
	prevStart := curStart.AddDate(0, 0, -windowDays)
	prevEnd := curStart.Add(-time.Second)

	current, err := e.store.EngagementMetrics(ctx, userID, &curStart, &now)
	if err != nil {
		return nil, err
	}
	previous, err := e.store.EngagementMetrics(ctx, userID, &prevStart, &prevEnd)
	if err != nil {
		return nil, err
	}

	return &DropOff{
		WindowDays: windowDays,
		Current:    current,
		Previous:   previous,
		ChangePct:  ChangePct(previous.Total(), current.Total()),
	}, nil
}

// ChangePct is the period-over-period percentage change. A previous total
// of zero reports +100 when any current activity exists (the new-activity
// case) and 0 when both periods are empty.
func ChangePct(previous, current int64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return float64(current-previous) / float64(previous) * 100
}
