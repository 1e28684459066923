package recurrence

import (
	"errors"
	"testing"
	"time"
)

type testItem struct {
	ref  Ref
	rule Rule
	err  error
}

func (i testItem) Ref() Ref                  { return i.ref }
func (i testItem) Recurrence() (Rule, error) { return i.rule, i.err }

func TestBuildUpcoming(t *testing.T) {
	t.Parallel()
	loc := moscow(t)
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	past, _ := NewOneOff(now.Add(-time.Hour), false)
	soon, _ := NewOneOff(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), false)
	feb1Midnight := mustYearly(t, 2, 1, nil, true)
	jan7 := mustYearly(t, 1, 7, nil, true)

	items := []Item{
		testItem{ref: Ref{SourceBirthday, 3}, rule: feb1Midnight},
		testItem{ref: Ref{SourceEvent, 1}, rule: past},
		testItem{ref: Ref{SourceEvent, 2}, rule: soon},
		testItem{ref: Ref{SourceEvent, 9}, rule: feb1Midnight},
		testItem{ref: Ref{SourceBirthday, 1}, rule: jan7},
		testItem{ref: Ref{SourceEvent, 5}, err: ErrInvalidDefinition},
		nil,
	}

	got, skipped := BuildUpcoming(items, now, loc)

	wantRefs := []Ref{
		{SourceEvent, 9},    // Feb 1 00:00 MSK, tie broken by source
		{SourceBirthday, 3}, // Feb 1 00:00 MSK
		{SourceEvent, 2},    // Feb 1 12:00 MSK
		{SourceBirthday, 1}, // Jan 7 2027
	}
	if len(got) != len(wantRefs) {
		t.Fatalf("got %d occurrences, want %d", len(got), len(wantRefs))
	}
	for i, want := range wantRefs {
		if got[i].Item.Ref() != want {
			t.Errorf("position %d: got %+v, want %+v", i, got[i].Item.Ref(), want)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].At.Before(got[i-1].At) {
			t.Fatalf("not ascending at %d", i)
		}
	}

	if len(skipped) != 1 || skipped[0].Ref != (Ref{SourceEvent, 5}) || !errors.Is(skipped[0].Err, ErrInvalidDefinition) {
		t.Fatalf("skipped = %+v", skipped)
	}
}

func TestBuildUpcomingEmpty(t *testing.T) {
	t.Parallel()
	got, skipped := BuildUpcoming(nil, time.Now(), time.UTC)
	if len(got) != 0 || len(skipped) != 0 {
		t.Fatalf("got %v, %v", got, skipped)
	}
}
