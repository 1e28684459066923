package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// maxLastDayProbes bounds the search in lastDaySchedule.Next. A 28-31
// schedule reaches a last day within a handful of candidates.
const maxLastDayProbes = 512

// lastDaySchedule wraps a schedule restricted to days 28-31 and keeps only
// the activations that fall on the last day of their month.
type lastDaySchedule struct {
	base cron.Schedule
}

func (s *lastDaySchedule) Next(t time.Time) time.Time {
	for i := 0; i < maxLastDayProbes; i++ {
		n := s.base.Next(t)
		if n.IsZero() {
			return n
		}
		if n.AddDate(0, 0, 1).Day() == 1 {
			return n
		}
		t = n
	}
	return time.Time{}
}

// newParser accepts standard five-field expressions and descriptors.
func newParser() cron.Parser {
	return cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

// ParseSpec parses a cron expression. A day-of-month field of "L" means the
// last day of the month.
func ParseSpec(p cron.Parser, spec string) (cron.Schedule, error) {
	spec = strings.TrimSpace(spec)
	fields := strings.Fields(spec)
	if len(fields) == 5 && strings.EqualFold(fields[2], "L") {
		fields[2] = "28-31"
		base, err := p.Parse(strings.Join(fields, " "))
		if err != nil {
			return nil, fmt.Errorf("parse cron %q: %w", spec, err)
		}
		return &lastDaySchedule{base: base}, nil
	}
	sched, err := p.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron %q: %w", spec, err)
	}
	return sched, nil
}
