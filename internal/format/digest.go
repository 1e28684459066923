package format

import (
	"strconv"
	"strings"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/caltime"
	"github.com/Jymapas/SnakeFrogCalendarBot/internal/models"
)

const (
	emptyDaily   = "Сегодня событий и дней рождения нет"
	emptyWeekly  = "На эту неделю событий и дней рождения нет"
	emptyMonthly = "На этот месяц событий и дней рождения нет"
)

// DigestRenderer renders digests in Russian using the Markdown subset
// understood by ParseMarkdown. Items are expected in digest order.
type DigestRenderer struct{}

func (DigestRenderer) Render(kind models.DigestKind, start, end caltime.LocalDateTime, items []models.CalendarItem) string {
	var b strings.Builder
	switch kind {
	case models.DigestDaily:
		b.WriteString("📅 **Сегодня (" + DayMonth(start.Date) + ")**\n")
		if len(items) == 0 {
			b.WriteString(emptyDaily)
			return b.String()
		}
		for _, it := range items {
			writeItem(&b, it)
		}
	case models.DigestWeekly:
		b.WriteString("📆 **События на неделю (" + DayMonth(start.Date) + "–" + DayMonth(end.Date) + ")**\n\n")
		if len(items) == 0 {
			b.WriteString(emptyWeekly)
			return b.String()
		}
		writeGrouped(&b, items, func(d caltime.Date) string { return Weekday(d) + ", " + DayMonth(d) })
	case models.DigestMonthly:
		b.WriteString("📆 **События на месяц (" + MonthYear(start.Date) + ")**\n\n")
		if len(items) == 0 {
			b.WriteString(emptyMonthly)
			return b.String()
		}
		writeGrouped(&b, items, DayMonth)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeGrouped(b *strings.Builder, items []models.CalendarItem, heading func(caltime.Date) string) {
	for i, it := range items {
		if i == 0 || it.Date != items[i-1].Date {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("**" + heading(it.Date) + "**\n")
		}
		writeItem(b, it)
	}
}

func writeItem(b *strings.Builder, it models.CalendarItem) {
	if it.Kind == models.CalendarItemBirthday {
		b.WriteString("🎂 " + Escape(it.Title))
		if it.BirthYear != nil {
			b.WriteString(" (" + strconv.Itoa(*it.BirthYear) + ")")
		}
		b.WriteString("\n")
		return
	}
	b.WriteString("📅 ")
	if !it.IsAllDay && it.Time != nil {
		b.WriteString(Clock(*it.Time) + " — ")
	}
	b.WriteString(Escape(it.Title))
	if it.Place != "" {
		b.WriteString(" 📍 " + Escape(it.Place))
	}
	if it.HasAttachment {
		b.WriteString(" 📎")
	}
	b.WriteString("\n")
}
