package digest

import (
	"testing"
	"time"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/models"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/recurrence"
)

func intp(v int) *int { return &v }

func oneOff(id int64, title string, at time.Time) *models.Event {
	return &models.Event{EventID: id, Title: title, Kind: models.EventKindOneOff, OccursAt: &at}
}

func yearly(id int64, title string, month, day int, tod *time.Duration, allDay bool) *models.Event {
	return &models.Event{EventID: id, Title: title, Kind: models.EventKindYearly, Month: intp(month), Day: intp(day), TimeOfDay: tod, IsAllDay: allDay}
}

func titles(ms []Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Item.Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSelectForPeriodDailyScenario(t *testing.T) {
	t.Parallel()
	loc := moscow(t)
	p, _ := ComputePeriod(models.DigestDaily, time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC), zoneID, loc)

	events := []*models.Event{
		oneOff(1, "late evening", time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)),
		oneOff(2, "after midnight", time.Date(2026, 3, 1, 21, 30, 0, 0, time.UTC)),
	}
	got, skipped := SelectForPeriod(p, loc, events, nil)
	if len(skipped) != 0 {
		t.Fatalf("skipped = %+v", skipped)
	}
	if len(got) != 1 || got[0].Item.Title != "late evening" {
		t.Fatalf("got %v", titles(got))
	}
	item := got[0].Item
	if item.Date != date(2026, 3, 1) || item.Time == nil || *item.Time != 23*time.Hour || item.IsAllDay {
		t.Fatalf("item = %+v", item)
	}
	if got[0].EventID != 1 {
		t.Fatalf("event id = %d", got[0].EventID)
	}
}

func TestSelectForPeriodBoundaries(t *testing.T) {
	t.Parallel()
	loc := moscow(t)
	p, _ := ComputePeriod(models.DigestDaily, time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC), zoneID, loc)
	start, end := p.Window(loc)

	events := []*models.Event{
		oneOff(1, "at start", start),
		oneOff(2, "at end", end),
		oneOff(3, "just before", start.Add(-time.Millisecond)),
		oneOff(4, "just after", end.Add(time.Millisecond)),
	}
	got, _ := SelectForPeriod(p, loc, events, nil)
	if want := []string{"at start", "at end"}; !equalStrings(titles(got), want) {
		t.Fatalf("got %v, want %v", titles(got), want)
	}
}

func TestSelectForPeriodYearlyAndBirthdays(t *testing.T) {
	t.Parallel()
	loc := moscow(t)
	// Week of Mon 2026-01-12 .. Sun 2026-01-18.
	p, _ := ComputePeriod(models.DigestWeekly, time.Date(2026, 1, 11, 18, 0, 0, 0, time.UTC), zoneID, loc)

	ten := 10 * time.Hour
	events := []*models.Event{
		yearly(1, "Годовщина", 1, 14, &ten, false),
		yearly(2, "Праздник", 1, 14, nil, true),
		yearly(3, "Вне недели", 1, 19, nil, true),
		yearly(4, "Сломанное", 14, 1, nil, true),
	}
	birthdays := []*models.Birthday{
		{BirthdayID: 1, PersonName: "Борис", Month: 1, Day: 14, BirthYear: intp(1990)},
		{BirthdayID: 2, PersonName: "Анна", Month: 1, Day: 14},
		{BirthdayID: 3, PersonName: "Вера", Month: 1, Day: 12},
		{BirthdayID: 4, PersonName: "Глеб", Month: 1, Day: 11},
	}

	got, skipped := SelectForPeriod(p, loc, events, birthdays)

	want := []string{"Вера", "Годовщина", "Праздник", "Анна", "Борис"}
	if !equalStrings(titles(got), want) {
		t.Fatalf("got %v, want %v", titles(got), want)
	}
	if len(skipped) != 1 || skipped[0].Ref != (recurrence.Ref{Source: recurrence.SourceEvent, ID: 4}) {
		t.Fatalf("skipped = %+v", skipped)
	}

	boris := got[4].Item
	if boris.Kind != models.CalendarItemBirthday || !boris.IsAllDay || boris.BirthYear == nil || *boris.BirthYear != 1990 {
		t.Fatalf("birthday item = %+v", boris)
	}
	if got[4].EventID != 0 {
		t.Fatal("birthdays carry no event id")
	}
	anniversary := got[1].Item
	if anniversary.Time == nil || *anniversary.Time != ten || anniversary.Date != date(2026, 1, 14) {
		t.Fatalf("yearly item = %+v", anniversary)
	}
}

func TestSelectForPeriodAcrossYearBoundary(t *testing.T) {
	t.Parallel()
	loc := moscow(t)
	// Mon 2026-12-28 .. Sun 2027-01-03.
	p, _ := ComputePeriod(models.DigestWeekly, time.Date(2026, 12, 27, 18, 0, 0, 0, time.UTC), zoneID, loc)

	events := []*models.Event{yearly(1, "Новый год", 1, 1, nil, true), yearly(2, "Канун", 12, 31, nil, true)}
	birthdays := []*models.Birthday{{BirthdayID: 1, PersonName: "Январь", Month: 1, Day: 2}}

	got, _ := SelectForPeriod(p, loc, events, birthdays)
	if want := []string{"Канун", "Новый год", "Январь"}; !equalStrings(titles(got), want) {
		t.Fatalf("got %v, want %v", titles(got), want)
	}
	if got[1].Item.Date != date(2027, 1, 1) || got[2].Item.Date != date(2027, 1, 2) {
		t.Fatalf("dates = %v, %v", got[1].Item.Date, got[2].Item.Date)
	}
}

func TestSelectForPeriodLeapDayClamp(t *testing.T) {
	t.Parallel()
	loc := moscow(t)
	p, _ := ComputePeriod(models.DigestMonthly, time.Date(2027, 1, 31, 15, 0, 0, 0, time.UTC), zoneID, loc)

	birthdays := []*models.Birthday{{BirthdayID: 1, PersonName: "Високосный", Month: 2, Day: 29}}
	got, _ := SelectForPeriod(p, loc, nil, birthdays)
	if len(got) != 1 || got[0].Item.Date != date(2027, 2, 28) {
		t.Fatalf("got %+v", got)
	}
}

func TestSortItems(t *testing.T) {
	t.Parallel()
	nine, eighteen := 9*time.Hour, 18*time.Hour
	d1, d2 := date(2026, 5, 1), date(2026, 5, 2)
	items := []models.CalendarItem{
		{Date: d2, Title: "a", Kind: models.CalendarItemEvent, Time: &nine},
		{Date: d1, Title: "birthday", Kind: models.CalendarItemBirthday, IsAllDay: true},
		{Date: d1, Title: "z all day", Kind: models.CalendarItemEvent, IsAllDay: true},
		{Date: d1, Title: "b all day", Kind: models.CalendarItemEvent, IsAllDay: true},
		{Date: d1, Title: "evening", Kind: models.CalendarItemEvent, Time: &eighteen},
		{Date: d1, Title: "morning", Kind: models.CalendarItemEvent, Time: &nine},
	}
	SortItems(items)

	var got []string
	for _, it := range items {
		got = append(got, it.Title)
	}
	want := []string{"morning", "evening", "b all day", "z all day", "birthday", "a"}
	if !equalStrings(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
