package models

import (
	"fmt"
	"time"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/recurrence"
)

type Birthday struct {
	BirthdayID int64     `json:"birthday_id"`
	PersonName string    `json:"person_name"`
	Month      int       `json:"month"`
	Day        int       `json:"day"`
	BirthYear  *int      `json:"birth_year"` // Display only
	Contact    string    `json:"contact"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (b *Birthday) Ref() recurrence.Ref {
	return recurrence.Ref{Source: recurrence.SourceBirthday, ID: b.BirthdayID}
}

// Recurrence returns the birthday's yearly all-day rule.
func (b *Birthday) Recurrence() (recurrence.Rule, error) {
	rule, err := recurrence.NewYearly(b.Month, b.Day, nil, true)
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("birthday %d: %w", b.BirthdayID, err)
	}
	return rule, nil
}

// AgeOn returns the age reached on the given year, if the birth year is known.
func (b *Birthday) AgeOn(year int) (int, bool) {
	if b.BirthYear == nil || *b.BirthYear <= 0 || *b.BirthYear > year {
		return 0, false
	}
	return year - *b.BirthYear, true
}
