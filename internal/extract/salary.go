package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/util"
)

// DefaultPeriod applies when the salary text names no unit.
const DefaultPeriod = "month"

var (
	// a number not glued to a letter (skips "b2b"), optional "k" multiplier
	amountRe = regexp.MustCompile(`(?:^|[^\p{L}\d])(\d[\d\s.,]*\d|\d)(\s*k\b)?`)

	// what may sit between the two bounds of a range: "10 000 zl - 15 000",
	// "od 10 000 do 15 000", "€60,000 to €80,000"
	rangeSepRe = regexp.MustCompile(`^[^\d]{0,12}?(-|–|—|\bto\b|\bdo\b)[^\d]{0,6}$`)

	periodRes = []struct {
		period string
		re     *regexp.Regexp
	}{
		{"hour", regexp.MustCompile(`/\s*(h|hr|godz)\b|\bper hour\b|\bhourly\b|\bgodz|\bza godzin|\bhour\b`)},
		{"day", regexp.MustCompile(`/\s*(day|dzien)\b|\bper day\b|\bdaily\b|\bdniowk|\bza dzien\b|\bday\b`)},
		{"month", regexp.MustCompile(`/\s*(month|mth|mo|mies|msc)\b|\bper month\b|\bmonthly\b|\bmiesi|\bmies\b|\bmonth\b`)},
		{"year", regexp.MustCompile(`/\s*(year|yr|rok)\b|\bper (year|annum)\b|\byearly\b|\bannual|\brocznie\b|\bp\.a\.|\byear\b`)},
	}

	currencies = []struct {
		code string
		re   *regexp.Regexp
	}{
		{"PLN", regexp.MustCompile(`(?:^|[^a-z])(pln|zl)(?:$|[^a-z])`)},
		{"EUR", regexp.MustCompile(`(?:^|[^a-z])eur(?:$|[^a-z])|€`)},
		{"USD", regexp.MustCompile(`(?:^|[^a-z])usd(?:$|[^a-z])|\$`)},
		{"GBP", regexp.MustCompile(`(?:^|[^a-z])gbp(?:$|[^a-z])|£`)},
		{"CHF", regexp.MustCompile(`(?:^|[^a-z])chf(?:$|[^a-z])`)},
	}
)

// ParseSalary reads free salary text such as "10 000 – 15 000 zł / mies." or
// "€60,000 - €80,000 per year". Amounts are kept in the stated period. Text
// without amounts ("negotiable", "") yields a Salary with nil bounds.
func ParseSalary(text string) domain.Salary {
	folded := util.Fold(util.CleanText(text))
	if folded == "" {
		return domain.Salary{}
	}

	amounts := amountsOf(folded)
	if len(amounts) == 0 {
		return domain.Salary{}
	}

	lo, hi := amounts[0].v, amounts[0].v
	if len(amounts) > 1 && rangeSepRe.MatchString(folded[amounts[0].end:amounts[1].start]) {
		hi = amounts[1].v
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return domain.Salary{
		Min:      &lo,
		Max:      &hi,
		Currency: currencyOf(folded),
		Period:   periodOf(folded),
	}
}

type amount struct {
	v          float64
	start, end int
}

// amountsOf returns the amounts in text order. Percentages are skipped, and
// so are amounts in parentheses when any amount sits outside them.
func amountsOf(folded string) []amount {
	var outside, inside []amount
	for _, m := range amountRe.FindAllStringSubmatchIndex(folded, -1) {
		v, ok := parseAmount(folded[m[2]:m[3]])
		if !ok || v <= 0 {
			continue
		}
		if m[4] >= 0 && strings.TrimSpace(folded[m[4]:m[5]]) == "k" {
			v *= 1000
		}
		if strings.HasPrefix(strings.TrimLeft(folded[m[1]:], " "), "%") {
			continue
		}
		a := amount{v: v, start: m[2], end: m[1]}
		if depth(folded[:m[2]]) > 0 {
			inside = append(inside, a)
		} else {
			outside = append(outside, a)
		}
	}
	if len(outside) > 0 {
		return outside
	}
	return inside
}

// depth is the number of parentheses left open in s.
func depth(s string) int {
	return strings.Count(s, "(") - strings.Count(s, ")")
}

// periodOf picks the unit mentioned closest to the start of the text, which is
// the one attached to the amount in "160 zl/h (ok. 26 000 / mies.)".
func periodOf(folded string) string {
	best, at := DefaultPeriod, len(folded)+1
	for _, p := range periodRes {
		if loc := p.re.FindStringIndex(folded); loc != nil && loc[0] < at {
			best, at = p.period, loc[0]
		}
	}
	return best
}

func currencyOf(folded string) string {
	for _, c := range currencies {
		if c.re.MatchString(folded) {
			return c.code
		}
	}
	return ""
}

// parseAmount handles "15 000", "15,000", "15.000", "25,50" and "1.234,56".
func parseAmount(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\u202f' {
			return -1
		}
		return r
	}, s)

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		dec := byte('.')
		if lastComma > lastDot {
			dec = ','
		}
		s = normalizeSeparators(s, dec)
	case lastComma >= 0:
		s = normalizeSeparators(s, guessDecimal(s, ','))
	case lastDot >= 0:
		s = normalizeSeparators(s, guessDecimal(s, '.'))
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// guessDecimal treats sep as a thousands separator when every group after it
// has exactly three digits.
func guessDecimal(s string, sep byte) byte {
	parts := strings.Split(s, string(sep))
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return sep
		}
	}
	return 0
}

func normalizeSeparators(s string, dec byte) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == dec:
			b.WriteByte('.')
		case c == ',' || c == '.':
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
