package format

import (
	"fmt"
	"time"

	"github.com/Jymapas/SnakeFrogCalendarBot/internal/caltime"
)

var monthsGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var monthsNominative = [...]string{
	"январь", "февраль", "март", "апрель", "май", "июнь",
	"июль", "август", "сентябрь", "октябрь", "ноябрь", "декабрь",
}

var weekdays = [...]string{
	time.Sunday:    "Воскресенье",
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
}

// DayMonth formats a date as "7 января".
func DayMonth(d caltime.Date) string {
	return fmt.Sprintf("%d %s", d.Day, monthsGenitive[d.Month-1])
}

// MonthYear formats a date as "январь 2026".
func MonthYear(d caltime.Date) string {
	return fmt.Sprintf("%s %d", monthsNominative[d.Month-1], d.Year)
}

func Weekday(d caltime.Date) string {
	return weekdays[d.Weekday()]
}

// Clock formats a time of day as HH:mm.
func Clock(tod time.Duration) string {
	tod = tod.Truncate(time.Minute)
	return fmt.Sprintf("%02d:%02d", int(tod/time.Hour), int(tod%time.Hour/time.Minute))
}
