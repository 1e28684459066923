package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/caltime"
)

// ErrDuplicateRun is returned when a run for the same kind, period and zone
// is already recorded.
var ErrDuplicateRun = errors.New("notification run already recorded")

type DigestKind int

const (
	DigestDaily   DigestKind = 1
	DigestWeekly  DigestKind = 2
	DigestMonthly DigestKind = 3
)

// DigestKinds lists every kind in trigger order.
var DigestKinds = []DigestKind{DigestDaily, DigestWeekly, DigestMonthly}

func (k DigestKind) String() string {
	switch k {
	case DigestDaily:
		return "daily"
	case DigestWeekly:
		return "weekly"
	case DigestMonthly:
		return "monthly"
	default:
		return fmt.Sprintf("digest(%d)", int(k))
	}
}

// ParseDigestKind accepts the lower-case names returned by String.
func ParseDigestKind(s string) (DigestKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day":
		return DigestDaily, nil
	case "weekly", "week":
		return DigestWeekly, nil
	case "monthly", "month":
		return DigestMonthly, nil
	default:
		return 0, fmt.Errorf("unknown digest kind %q", s)
	}
}

// NotificationRun is a ledger row: one per digest actually sent.
type NotificationRun struct {
	NotificationRunID int64                 `json:"notification_run_id"`
	RunID             uuid.UUID             `json:"run_id"`
	Kind              DigestKind            `json:"digest_kind"`
	PeriodStartLocal  caltime.LocalDateTime `json:"period_start_local"`
	PeriodEndLocal    caltime.LocalDateTime `json:"period_end_local"`
	TimeZoneID        string                `json:"time_zone_id"`
	CreatedAt         time.Time             `json:"created_at"`
}

// Validate checks the fields the ledger's unique key is built from.
func (r *NotificationRun) Validate() error {
	if strings.TrimSpace(r.TimeZoneID) == "" {
		return errors.New("notification run: time zone id is required")
	}
	if r.Kind < DigestDaily || r.Kind > DigestMonthly {
		return fmt.Errorf("notification run: unknown digest kind %d", r.Kind)
	}
	if r.PeriodEndLocal.Compare(r.PeriodStartLocal) < 0 {
		return errors.New("notification run: period ends before it starts")
	}
	return nil
}
