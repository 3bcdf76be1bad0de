package literal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// formatCustom renders t with a custom date pattern built from letter runs:
//
//	yyyy yy y   year          MMMM MMM MM M   month
//	dddd ddd dd d   day       HH H hh h       hour (24h / 12h)
//	mm m   minute             ss s            second
//	f..fffffff   fraction     tt t            AM/PM designator
//	zzz zz z   UTC offset
//
// Text inside single quotes and any character after a backslash is copied
// verbatim; every other character is copied as-is.
func formatCustom(pattern string, t time.Time) (string, error) {
	var b strings.Builder
	runes := []rune(pattern)

	for i := 0; i < len(runes); {
		c := runes[i]

		switch c {
		case '\'', '"':
			end := indexRune(runes, i+1, c)
			if end < 0 {
				return "", fmt.Errorf("unterminated quoted text at offset %d", i)
			}
			b.WriteString(string(runes[i+1 : end]))
			i = end + 1
			continue
		case '\\':
			if i+1 >= len(runes) {
				return "", errors.New("trailing escape character")
			}
			b.WriteRune(runes[i+1])
			i += 2
			continue
		}

		n := 1
		for i+n < len(runes) && runes[i+n] == c {
			n++
		}

		switch c {
		case 'y':
			if n <= 2 {
				pad(&b, t.Year()%100, n)
			} else {
				pad(&b, t.Year(), n)
			}
		case 'M':
			switch {
			case n >= 4:
				b.WriteString(t.Month().String())
			case n == 3:
				b.WriteString(t.Month().String()[:3])
			default:
				pad(&b, int(t.Month()), n)
			}
		case 'd':
			switch {
			case n >= 4:
				b.WriteString(t.Weekday().String())
			case n == 3:
				b.WriteString(t.Weekday().String()[:3])
			default:
				pad(&b, t.Day(), n)
			}
		case 'H':
			pad(&b, t.Hour(), min(n, 2))
		case 'h':
			h := t.Hour() % 12
			if h == 0 {
				h = 12
			}
			pad(&b, h, min(n, 2))
		case 'm':
			pad(&b, t.Minute(), min(n, 2))
		case 's':
			pad(&b, t.Second(), min(n, 2))
		case 'f':
			if n > 7 {
				return "", fmt.Errorf("fraction run too long at offset %d", i)
			}
			frac := fmt.Sprintf("%09d", t.Nanosecond())
			b.WriteString(frac[:n])
		case 't':
			designator := "AM"
			if t.Hour() >= 12 {
				designator = "PM"
			}
			if n == 1 {
				designator = designator[:1]
			}
			b.WriteString(designator)
		case 'z':
			switch {
			case n >= 3:
				b.WriteString(t.Format("-07:00"))
			case n == 2:
				b.WriteString(t.Format("-07"))
			default:
				_, offset := t.Zone()
				sign := "+"
				if offset < 0 {
					sign = "-"
					offset = -offset
				}
				fmt.Fprintf(&b, "%s%d", sign, offset/3600)
			}
		default:
			b.WriteString(strings.Repeat(string(c), n))
		}
		i += n
	}

	return b.String(), nil
}

func pad(b *strings.Builder, v, width int) {
	fmt.Fprintf(b, "%0*d", width, v)
}

func indexRune(runes []rune, from int, r rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == r {
			return i
		}
	}
	return -1
}
