package scraper

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrUnparseableDate means no known timestamp shape matched. The pipeline
// falls back to capture time when it sees this.
var ErrUnparseableDate = errors.New("unparseable date")

// TimezonePolicy says how to interpret a source timestamp that carries no
// timezone of its own. CRHoy prints site-local times that historically
// lined up with a fixed six hour shift to UTC; Diario Extra times are
// interpreted in America/Costa_Rica. Costa Rica doesn't observe DST, so
// the two agree in practice, but each site keeps its own documented policy.
type TimezonePolicy struct {
	// FixedShift is added to the naive local time to reach UTC.
	// Ignored when Zone is set.
	FixedShift time.Duration
	// Zone interprets the naive local time in a named location.
	Zone *time.Location
}

func (p TimezonePolicy) toUtc(year int, month time.Month, day, hour, minute, second int) time.Time {
	if p.Zone != nil {
		return time.Date(year, month, day, hour, minute, second, 0, p.Zone).UTC()
	}
	return time.Date(year, month, day, hour, minute, second, 0, time.UTC).Add(p.FixedShift)
}

// DateNormalizer turns free-text publication timestamps into UTC instants.
type DateNormalizer struct {
	Policy TimezonePolicy
}

var monthsByName = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August,
	"septiembre": time.September, "setiembre": time.September,
	"octubre": time.October, "noviembre": time.November, "diciembre": time.December,

	// CRHoy served English month names when the site's locale switch
	// misfired, so those parse too.
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

var oddWhitespaceRegex = regexp.MustCompile(`[\x{00A0}\x{2000}-\x{200A}\x{202F}\x{205F}\x{3000}\t]`)
var spacesRegex = regexp.MustCompile(` {2,}`)

func normalizeWhitespace(text string) string {
	text = oddWhitespaceRegex.ReplaceAllString(text, " ")
	text = spacesRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// "Mayo 24, 2024 11:10 pm" / "May 24, 2024"
var monthDayYearRegex = regexp.MustCompile(
	`(?i)^(\p{L}+) (\d{1,2}), (\d{4})(?: (\d{1,2}):(\d{2}) ?([ap])\.? ?m\.?)?$`)

// "24 de mayo de 2024" / "24 de Mayo de 2024, 11:10 pm" / "24 de mayo 2024 16:02"
var dayDeMonthRegex = regexp.MustCompile(
	`(?i)^(\d{1,2}) de (\p{L}+)(?: de)? (\d{4})(?:,? (\d{1,2}):(\d{2})(?: ?([ap])\.? ?m\.?)?)?$`)

// "29/05/2025 - 16:02" / "29/05/2025", day first
var slashDateRegex = regexp.MustCompile(
	`^(\d{1,2})/(\d{1,2})/(\d{4})(?: ?[-–] ?| )?(?:(\d{1,2}):(\d{2}))?$`)

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize parses raw into a UTC instant or reports ErrUnparseableDate.
func (n *DateNormalizer) Normalize(raw string) (time.Time, error) {
	text := normalizeWhitespace(raw)
	if text == "" {
		return time.Time{}, ErrUnparseableDate
	}

	if match := monthDayYearRegex.FindStringSubmatch(text); match != nil {
		month, ok := monthsByName[strings.ToLower(match[1])]
		if !ok {
			return time.Time{}, ErrUnparseableDate
		}
		day, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		hour, minute := parseClock(match[4], match[5], match[6])
		return n.buildUtc(year, month, day, hour, minute)
	}

	if match := dayDeMonthRegex.FindStringSubmatch(text); match != nil {
		month, ok := monthsByName[strings.ToLower(match[2])]
		if !ok {
			return time.Time{}, ErrUnparseableDate
		}
		day, _ := strconv.Atoi(match[1])
		year, _ := strconv.Atoi(match[3])
		hour, minute := parseClock(match[4], match[5], match[6])
		return n.buildUtc(year, month, day, hour, minute)
	}

	if match := slashDateRegex.FindStringSubmatch(text); match != nil {
		day, _ := strconv.Atoi(match[1])
		monthNumber, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		if monthNumber < 1 || monthNumber > 12 {
			return time.Time{}, ErrUnparseableDate
		}
		hour, minute := parseClock(match[4], match[5], "")
		return n.buildUtc(year, time.Month(monthNumber), day, hour, minute)
	}

	for _, layout := range isoLayouts {
		parsed, err := time.Parse(layout, text)
		if err != nil {
			continue
		}
		if layout == time.RFC3339 {
			// The timestamp carried its own offset, no policy needed.
			return parsed.UTC(), nil
		}
		return n.Policy.toUtc(parsed.Year(), parsed.Month(), parsed.Day(),
			parsed.Hour(), parsed.Minute(), parsed.Second()), nil
	}

	return time.Time{}, ErrUnparseableDate
}

func (n *DateNormalizer) buildUtc(year int, month time.Month, day, hour, minute int) (time.Time, error) {
	if day < 1 || day > 31 {
		return time.Time{}, ErrUnparseableDate
	}
	return n.Policy.toUtc(year, month, day, hour, minute, 0), nil
}

// parseClock converts an optional 12-hour or 24-hour reading to 24-hour.
// 12 am is midnight, 12 pm is noon.
func parseClock(hourStr, minuteStr, meridiem string) (int, int) {
	if hourStr == "" {
		return 0, 0
	}
	hour, _ := strconv.Atoi(hourStr)
	minute, _ := strconv.Atoi(minuteStr)
	switch strings.ToLower(meridiem) {
	case "p":
		if hour != 12 {
			hour += 12
		}
	case "a":
		if hour == 12 {
			hour = 0
		}
	}
	return hour, minute
}

// CostaRicaZone loads America/Costa_Rica, falling back to the fixed -6
// offset the country has kept since 1992 if tzdata is unavailable.
func CostaRicaZone() *time.Location {
	zone, err := time.LoadLocation("America/Costa_Rica")
	if err != nil {
		return time.FixedZone("CST", -6*60*60)
	}
	return zone
}
