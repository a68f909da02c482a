package convert

import (
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/aretw0/mold/pkg/typedesc"
)

// Integer parses signed and unsigned integer kinds, honoring the locale's
// group separator.
var Integer = Func(func(raw string, target reflect.Type, tag language.Tag) (reflect.Value, error) {
	s, fraction, ok := GrammarFor(tag).normalizeNumber(raw)
	if !ok || fraction {
		return reflect.Value{}, invalid(KeyInteger, raw, nil)
	}

	v := reflect.New(target).Elem()
	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, target.Bits())
		if err != nil {
			return reflect.Value{}, invalid(KeyInteger, raw, err)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 10, target.Bits())
		if err != nil {
			return reflect.Value{}, invalid(KeyInteger, raw, err)
		}
		v.SetUint(n)
	default:
		return reflect.Value{}, invalid(KeyInteger, raw, nil)
	}
	return v, nil
})

// Number parses float kinds, honoring the locale's decimal and group
// separators.
var Number = Func(func(raw string, target reflect.Type, tag language.Tag) (reflect.Value, error) {
	s, _, ok := GrammarFor(tag).normalizeNumber(raw)
	if !ok {
		return reflect.Value{}, invalid(KeyNumber, raw, nil)
	}
	f, err := strconv.ParseFloat(s, target.Bits())
	if err != nil {
		return reflect.Value{}, invalid(KeyNumber, raw, err)
	}
	v := reflect.New(target).Elem()
	v.SetFloat(f)
	return v, nil
})

// BigInteger parses *big.Int.
var BigInteger = Func(func(raw string, target reflect.Type, tag language.Tag) (reflect.Value, error) {
	s, fraction, ok := GrammarFor(tag).normalizeNumber(raw)
	if !ok || fraction {
		return reflect.Value{}, invalid(KeyInteger, raw, nil)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return reflect.Value{}, invalid(KeyInteger, raw, nil)
	}
	return reflect.ValueOf(n), nil
})

// BigNumber parses *big.Float.
var BigNumber = Func(func(raw string, target reflect.Type, tag language.Tag) (reflect.Value, error) {
	s, _, ok := GrammarFor(tag).normalizeNumber(raw)
	if !ok {
		return reflect.Value{}, invalid(KeyNumber, raw, nil)
	}
	f, _, err := big.ParseFloat(s, 10, 256, big.ToNearestEven)
	if err != nil {
		return reflect.Value{}, invalid(KeyNumber, raw, err)
	}
	return reflect.ValueOf(f), nil
})

var (
	truthy = map[string]bool{"true": true, "on": true, "yes": true, "y": true, "1": true}
	falsy  = map[string]bool{"false": true, "off": true, "no": true, "n": true, "0": true}
)

// Boolean accepts true/false, on/off, yes/no, y/n and 1/0 in any case.
var Boolean = Func(func(raw string, target reflect.Type, _ language.Tag) (reflect.Value, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	v := reflect.New(target).Elem()
	switch {
	case truthy[s]:
		v.SetBool(true)
	case falsy[s]:
		v.SetBool(false)
	default:
		return reflect.Value{}, invalid(KeyBoolean, raw, nil)
	}
	return v, nil
})

// Character accepts exactly one rune.
var Character = Func(func(raw string, target reflect.Type, _ language.Tag) (reflect.Value, error) {
	if utf8.RuneCountInString(raw) != 1 {
		return reflect.Value{}, invalid(KeyChar, raw, nil)
	}
	r, _ := utf8.DecodeRuneInString(raw)
	if r == utf8.RuneError {
		return reflect.Value{}, invalid(KeyChar, raw, nil)
	}
	v := reflect.New(target).Elem()
	v.SetInt(int64(r))
	return v, nil
})

// String returns the raw value unchanged.
var String = Func(func(raw string, target reflect.Type, _ language.Tag) (reflect.Value, error) {
	v := reflect.New(target).Elem()
	v.SetString(raw)
	return v, nil
})

// DateOnly parses typedesc.Date with the locale's short date layouts or ISO
// 8601.
var DateOnly = Func(func(raw string, _ reflect.Type, tag language.Tag) (reflect.Value, error) {
	s := strings.TrimSpace(raw)
	layouts := append(append([]string(nil), isoDate...), GrammarFor(tag).DateLayouts...)
	t, err := parseAny(s, layouts)
	if err != nil {
		return reflect.Value{}, invalid(KeyDate, raw, err)
	}
	return reflect.ValueOf(typedesc.Date{Time: t}), nil
})

// TimeOnly parses typedesc.TimeOfDay.
var TimeOnly = Func(func(raw string, _ reflect.Type, tag language.Tag) (reflect.Value, error) {
	s := strings.TrimSpace(raw)
	layouts := append(append([]string(nil), isoTimes...), GrammarFor(tag).TimeLayouts...)
	t, err := parseAny(s, layouts)
	if err != nil {
		return reflect.Value{}, invalid(KeyTime, raw, err)
	}
	return reflect.ValueOf(typedesc.TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}), nil
})

// DateTime parses time.Time. ISO forms are tried first, then the locale's
// date layouts alone or followed by one of its time layouts.
var DateTime = Func(func(raw string, _ reflect.Type, tag language.Tag) (reflect.Value, error) {
	s := strings.TrimSpace(raw)
	g := GrammarFor(tag)
	layouts := append([]string(nil), isoDateTimes...)
	times := append(append([]string(nil), isoTimes...), g.TimeLayouts...)
	for _, d := range append(append([]string(nil), isoDate...), g.DateLayouts...) {
		for _, tm := range times {
			layouts = append(layouts, d+" "+tm)
		}
		layouts = append(layouts, d)
	}
	t, err := parseAny(s, layouts)
	if err != nil {
		return reflect.Value{}, invalid(KeyDateTime, raw, err)
	}
	return reflect.ValueOf(t), nil
})

// Duration parses time.Duration in Go syntax (1h30m) or as a clock time
// (01:30:00).
var Duration = Func(func(raw string, target reflect.Type, _ language.Tag) (reflect.Value, error) {
	s := strings.TrimSpace(raw)
	d, err := time.ParseDuration(s)
	if err != nil {
		t, clockErr := parseAny(s, isoTimes)
		if clockErr != nil {
			return reflect.Value{}, invalid(KeyTime, raw, err)
		}
		d = time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
	}
	v := reflect.New(target).Elem()
	v.SetInt(int64(d))
	return v, nil
})

// EnumOf returns a converter for the enum declared in types.
func EnumOf(types *typedesc.Registry) Converter {
	return Func(func(raw string, target reflect.Type, _ language.Tag) (reflect.Value, error) {
		desc, ok := types.EnumFor(target)
		if !ok {
			return reflect.Value{}, invalid(KeyEnum, raw, nil)
		}
		v, ok := desc.Parse(strings.TrimSpace(raw))
		if !ok {
			return reflect.Value{}, invalid(KeyEnum, raw, nil)
		}
		return v, nil
	})
}

func parseAny(s string, layouts []string) (time.Time, error) {
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
