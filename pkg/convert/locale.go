package convert

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/language"
)

// Grammar holds the locale-dependent parsing rules for numbers and dates.
type Grammar struct {
	Decimal rune
	Group   []rune
	// DateLayouts are tried in order after the locale-independent ISO form.
	DateLayouts []string
	TimeLayouts []string
}

var (
	isoDate       = []string{time.DateOnly}
	isoTimes      = []string{"15:04:05", "15:04", "15:04:05.999999999"}
	isoDateTimes  = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", time.DateTime, "2006-01-02 15:04"}
	twelveHour    = []string{"3:04 PM", "3:04:05 PM", "03:04 PM", "3:04PM"}
	dayFirstSlash = []string{"02/01/2006", "2/1/2006", "02/01/06"}
)

var (
	grammarEnglishUS = Grammar{
		Decimal:     '.',
		Group:       []rune{','},
		DateLayouts: []string{"01/02/2006", "1/2/2006", "01/02/06", "Jan 2, 2006", "January 2, 2006"},
		TimeLayouts: twelveHour,
	}
	grammarEnglishGB = Grammar{
		Decimal:     '.',
		Group:       []rune{','},
		DateLayouts: append([]string{"2 Jan 2006"}, dayFirstSlash...),
	}
	grammarCommaDecimal = Grammar{
		Decimal:     ',',
		Group:       []rune{'.'},
		DateLayouts: dayFirstSlash,
	}
	grammarGerman = Grammar{
		Decimal:     ',',
		Group:       []rune{'.'},
		DateLayouts: []string{"02.01.2006", "2.1.2006", "02.01.06"},
	}
	grammarFrench = Grammar{
		Decimal:     ',',
		Group:       []rune{' ', ' ', ' '},
		DateLayouts: dayFirstSlash,
	}
	grammarEastAsian = Grammar{
		Decimal:     '.',
		Group:       []rune{','},
		DateLayouts: []string{"2006/01/02", "2006/1/2"},
	}
)

var (
	supportedTags = []language.Tag{
		language.AmericanEnglish, // first entry is the fallback
		language.BritishEnglish,
		language.BrazilianPortuguese,
		language.EuropeanPortuguese,
		language.Spanish,
		language.Italian,
		language.German,
		language.French,
		language.Japanese,
		language.Chinese,
		language.Korean,
	}
	supportedGrammars = []Grammar{
		grammarEnglishUS,
		grammarEnglishGB,
		grammarCommaDecimal,
		grammarCommaDecimal,
		grammarCommaDecimal,
		grammarCommaDecimal,
		grammarGerman,
		grammarFrench,
		grammarEastAsian,
		grammarEastAsian,
		grammarEastAsian,
	}
	matcher = language.NewMatcher(supportedTags)
)

// GrammarFor returns the grammar closest to tag. Unknown and undetermined
// locales use American English.
func GrammarFor(tag language.Tag) Grammar {
	if tag == language.Und {
		return grammarEnglishUS
	}
	_, i, conf := matcher.Match(tag)
	if conf == language.No {
		return grammarEnglishUS
	}
	return supportedGrammars[i]
}

// normalizeNumber rewrites a localized number into the form strconv expects.
// Group separators must sit between groups of three digits; a misplaced
// separator makes the input invalid. fraction reports whether a decimal
// separator was present.
func (g Grammar) normalizeNumber(raw string) (out string, fraction bool, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false, false
	}

	var sign string
	if s[0] == '+' || s[0] == '-' {
		if s[0] == '-' {
			sign = "-"
		}
		s = s[1:]
	}

	intPart, fracPart := s, ""
	if i := strings.IndexRune(s, g.Decimal); i >= 0 {
		intPart, fracPart = s[:i], s[i+len(string(g.Decimal)):]
		fraction = true
	}

	digits, ok := g.stripGroups(intPart)
	if !ok {
		return "", false, false
	}
	if fraction {
		if fracPart == "" && digits == "" {
			return "", false, false
		}
		if !allDigitsOrExponent(fracPart) {
			return "", false, false
		}
		if digits == "" {
			digits = "0"
		}
		return sign + digits + "." + fracPart, true, true
	}
	// exponent without fraction: 1e5
	if i := strings.IndexAny(digits, "eE"); i > 0 {
		if !allDigits(digits[:i]) || !validExponent(digits[i+1:]) {
			return "", false, false
		}
		return sign + digits, true, true
	}
	if !allDigits(digits) {
		return "", false, false
	}
	return sign + digits, false, true
}

func (g Grammar) stripGroups(s string) (string, bool) {
	isGroup := func(r rune) bool {
		for _, sep := range g.Group {
			if r == sep {
				return true
			}
		}
		return false
	}
	if strings.IndexFunc(s, isGroup) < 0 {
		return s, true
	}

	parts := strings.FieldsFunc(s, isGroup)
	// FieldsFunc drops empty fields; a leading, trailing or doubled separator
	// shows up as a length mismatch below.
	if len(parts) < 2 {
		return "", false
	}
	var b strings.Builder
	for i, p := range parts {
		if !allDigits(p) {
			return "", false
		}
		if i == 0 && (len(p) == 0 || len(p) > 3) {
			return "", false
		}
		if i > 0 && len(p) != 3 {
			return "", false
		}
		b.WriteString(p)
	}
	rebuilt := len(b.String()) + len(parts) - 1
	if rebuilt != len([]rune(s)) {
		return "", false
	}
	return b.String(), true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func allDigitsOrExponent(s string) bool {
	if s == "" {
		return true
	}
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		return (i == 0 || allDigits(s[:i])) && validExponent(s[i+1:])
	}
	return allDigits(s)
}

func validExponent(s string) bool {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		s = s[1:]
	}
	return allDigits(s)
}

func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
