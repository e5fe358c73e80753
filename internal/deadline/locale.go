package deadline

import (
	"fmt"
	"strings"
)

// Locale selects the language of Info.Text.
type Locale string

const (
	LocaleEnglish    Locale = "en"
	LocaleVietnamese Locale = "vi"
)

// ParseLocale maps a locale tag onto a supported Locale, defaulting to English.
func ParseLocale(tag string) Locale {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(tag)), "vi") {
		return LocaleVietnamese
	}
	return LocaleEnglish
}

type phrasebook interface {
	days(d int) string
	daysHours(d, h int) string
	hoursMinutes(h, m int) string
	minutes(m int) string
	overdueDays(d int) string
	overdueHours(h int) string
	overdue() string
}

func phrasesFor(l Locale) phrasebook {
	if l == LocaleVietnamese {
		return vietnamese{}
	}
	return english{}
}

type english struct{}

func (english) days(d int) string {
	return unit(d, "day") + " remaining"
}

func (english) daysHours(d, h int) string {
	return unit(d, "day") + " " + unit(h, "hour") + " remaining"
}

func (english) hoursMinutes(h, m int) string {
	return unit(h, "hour") + " " + unit(m, "minute") + " remaining"
}

func (english) minutes(m int) string {
	return unit(m, "minute") + " remaining"
}

func (english) overdueDays(d int) string  { return "Overdue by " + unit(d, "day") }
func (english) overdueHours(h int) string { return "Overdue by " + unit(h, "hour") }
func (english) overdue() string           { return "Overdue" }

func unit(n int, name string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, name)
	}
	return fmt.Sprintf("%d %ss", n, name)
}

type vietnamese struct{}

func (vietnamese) days(d int) string            { return fmt.Sprintf("Còn %d ngày", d) }
func (vietnamese) daysHours(d, h int) string    { return fmt.Sprintf("Còn %d ngày %d giờ", d, h) }
func (vietnamese) hoursMinutes(h, m int) string { return fmt.Sprintf("Còn %d giờ %d phút", h, m) }
func (vietnamese) minutes(m int) string         { return fmt.Sprintf("Còn %d phút", m) }
func (vietnamese) overdueDays(d int) string     { return fmt.Sprintf("Quá hạn %d ngày", d) }
func (vietnamese) overdueHours(h int) string    { return fmt.Sprintf("Quá hạn %d giờ", h) }
func (vietnamese) overdue() string              { return "Quá hạn" }
