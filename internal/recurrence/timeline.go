package recurrence

import (
	"sort"
	"time"
)

// Source tells which table an item came from.
type Source int

const (
	SourceEvent Source = iota + 1
	SourceBirthday
)

// Ref is the natural identifier of an item, used to break ordering ties.
type Ref struct {
	Source Source
	ID     int64
}

func (r Ref) Less(o Ref) bool {
	if r.Source != o.Source {
		return r.Source < o.Source
	}
	return r.ID < o.ID
}

// Item is anything that can be placed on the timeline.
type Item interface {
	Ref() Ref
	// Recurrence validates the stored definition. It returns an error
	// wrapping ErrInvalidDefinition for malformed items.
	Recurrence() (Rule, error)
}

// Occurrence is an item paired with its next resolved instant.
type Occurrence struct {
	Item Item
	Rule Rule
	At   time.Time
}

// Skipped records an item left out because its definition was invalid.
type Skipped struct {
	Ref Ref
	Err error
}

// BuildUpcoming resolves the next occurrence of every item and returns
// them in ascending order of instant, ties broken by Ref. One-off items
// already in the past are dropped; yearly items always appear once.
func BuildUpcoming(items []Item, now time.Time, loc *time.Location) ([]Occurrence, []Skipped) {
	out := make([]Occurrence, 0, len(items))
	var skipped []Skipped
	for _, it := range items {
		if it == nil {
			continue
		}
		rule, err := it.Recurrence()
		if err != nil {
			skipped = append(skipped, Skipped{Ref: it.Ref(), Err: err})
			continue
		}
		at, ok := NextOccurrence(rule, loc, now)
		if !ok {
			continue
		}
		out = append(out, Occurrence{Item: it, Rule: rule, At: at})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].At.Equal(out[j].At) {
			return out[i].At.Before(out[j].At)
		}
		return out[i].Item.Ref().Less(out[j].Item.Ref())
	})
	return out, skipped
}
