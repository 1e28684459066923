package format

import (
	"strconv"
	"strings"
	"time"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/caltime"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/models"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/recurrence"
)

// FormatUpcoming renders a timeline as one line per occurrence.
func FormatUpcoming(occ []recurrence.Occurrence, loc *time.Location) string {
	if len(occ) == 0 {
		return "Событий пока нет"
	}
	var b strings.Builder
	b.WriteString("🗓 **Ближайшие события**\n\n")
	for _, o := range occ {
		local := caltime.LocalOf(o.At.In(loc))
		switch it := o.Item.(type) {
		case *models.Birthday:
			b.WriteString("🎂 " + DayMonth(local.Date) + " — " + Escape(it.PersonName))
			if age, ok := it.AgeOn(local.Date.Year); ok {
				b.WriteString(" (" + strconv.Itoa(age) + ")")
			}
		case *models.Event:
			b.WriteString("📅 " + DayMonth(local.Date))
			if o.Rule.Timed() {
				b.WriteString(" " + Clock(local.Time))
			}
			b.WriteString(" — " + Escape(it.Title))
			if it.IsRecurring() {
				b.WriteString(" _(ежегодно)_")
			}
		default:
			continue
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatBirthdays renders upcoming birthdays with contacts and the age
// reached, when the birth year is known.
func FormatBirthdays(occ []recurrence.Occurrence, loc *time.Location) string {
	var b strings.Builder
	for _, o := range occ {
		bd, ok := o.Item.(*models.Birthday)
		if !ok {
			continue
		}
		d := caltime.DateOf(o.At.In(loc))
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("**" + DayMonth(d) + "**\n")
		b.WriteString(Escape(bd.PersonName))
		if age, ok := bd.AgeOn(d.Year); ok {
			b.WriteString(", исполнится " + strconv.Itoa(age))
		}
		b.WriteString("\n")
		if c := strings.TrimSpace(bd.Contact); c != "" {
			b.WriteString("`" + strings.ReplaceAll(c, "`", "'") + "`\n")
		}
	}
	if b.Len() == 0 {
		return "Дней рождения пока нет"
	}
	return strings.TrimRight(b.String(), "\n")
}
