package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/logx"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/models"
)

type fakeEvents struct {
	events []*models.Event
	err    error
	calls  int
}

func (f *fakeEvents) ListAll(context.Context) ([]*models.Event, error) {
	f.calls++
	return f.events, f.err
}

type fakeBirthdays struct {
	birthdays []*models.Birthday
	err       error
}

func (f *fakeBirthdays) ListAll(context.Context) ([]*models.Birthday, error) {
	return f.birthdays, f.err
}

type fakeAttachments struct {
	withAttachment map[int64]bool
	lookups        []int64
}

func (f *fakeAttachments) CurrentFor(_ context.Context, eventID int64) (*models.Attachment, error) {
	f.lookups = append(f.lookups, eventID)
	if f.withAttachment[eventID] {
		return &models.Attachment{EventID: eventID, IsCurrent: true}, nil
	}
	return nil, nil
}

func TestBuilderBuildForPeriod(t *testing.T) {
	t.Parallel()
	loc := moscow(t)
	p, _ := ComputePeriod(models.DigestDaily, time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC), zoneID, loc)

	events := &fakeEvents{events: []*models.Event{
		oneOff(1, "with file", time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)),
		oneOff(2, "plain", time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)),
		oneOff(3, "tomorrow", time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)),
	}}
	birthdays := &fakeBirthdays{birthdays: []*models.Birthday{{BirthdayID: 1, PersonName: "Ира", Month: 3, Day: 1}}}
	attachments := &fakeAttachments{withAttachment: map[int64]bool{1: true}}

	b := NewBuilder(events, birthdays, attachments, logx.Nop())
	items, err := b.BuildForPeriod(context.Background(), p, loc)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items", len(items))
	}
	if !items[0].HasAttachment || items[1].HasAttachment {
		t.Fatalf("attachment flags = %v, %v", items[0].HasAttachment, items[1].HasAttachment)
	}
	if items[2].Kind != models.CalendarItemBirthday {
		t.Fatalf("last item = %+v", items[2])
	}
	if len(attachments.lookups) != 2 {
		t.Fatalf("attachment lookups = %v, want one per matched event", attachments.lookups)
	}
}

func TestBuilderRereadsStoresEveryCall(t *testing.T) {
	t.Parallel()
	loc := moscow(t)
	events := &fakeEvents{}
	b := NewBuilder(events, &fakeBirthdays{}, nil, logx.Nop())
	p, _ := ComputePeriod(models.DigestDaily, time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC), zoneID, loc)

	for i := 0; i < 2; i++ {
		if _, err := b.BuildForPeriod(context.Background(), p, loc); err != nil {
			t.Fatal(err)
		}
	}
	if events.calls != 2 {
		t.Fatalf("ListAll calls = %d, want 2", events.calls)
	}
}

func TestBuilderErrors(t *testing.T) {
	t.Parallel()
	loc := moscow(t)
	p, _ := ComputePeriod(models.DigestDaily, time.Now(), zoneID, loc)
	boom := errors.New("boom")

	b := NewBuilder(&fakeEvents{err: boom}, &fakeBirthdays{}, nil, logx.Nop())
	if _, err := b.BuildForPeriod(context.Background(), p, loc); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	events := &fakeEvents{}
	b = NewBuilder(events, &fakeBirthdays{}, nil, logx.Nop())
	if _, err := b.BuildForPeriod(ctx, p, loc); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if events.calls != 0 {
		t.Fatal("store read after cancellation")
	}
}

func TestBuilderUpcoming(t *testing.T) {
	t.Parallel()
	loc := moscow(t)
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	events := &fakeEvents{events: []*models.Event{
		oneOff(1, "past", now.Add(-time.Hour)),
		oneOff(2, "soon", now.Add(time.Hour)),
		yearly(3, "bad", 0, 1, nil, true),
		nil,
	}}
	birthdays := &fakeBirthdays{birthdays: []*models.Birthday{
		{BirthdayID: 1, PersonName: "Март", Month: 3, Day: 1},
		{BirthdayID: 2, PersonName: "Февраль", Month: 2, Day: 1},
	}}
	b := NewBuilder(events, birthdays, nil, logx.Nop())

	occ, err := b.Upcoming(context.Background(), now, loc, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(occ) != 3 {
		t.Fatalf("got %d occurrences", len(occ))
	}
	if occ[0].Item.(*models.Event).Title != "soon" || occ[1].Item.(*models.Birthday).PersonName != "Февраль" {
		t.Fatalf("order = %+v", occ)
	}

	limited, _ := b.Upcoming(context.Background(), now, loc, 2)
	if len(limited) != 2 {
		t.Fatalf("limit ignored: %d", len(limited))
	}

	bdays, err := b.UpcomingBirthdays(context.Background(), now, loc, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(bdays) != 2 || bdays[0].Item.(*models.Birthday).PersonName != "Февраль" {
		t.Fatalf("birthdays = %+v", bdays)
	}
}
