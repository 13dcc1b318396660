// Package koi normalizes Kepler Object of Interest identifiers.
//
// Catalogs and people spell candidates many ways: 123, 123.01, "KOI-123",
// "koi_123.01", "K00123". Every spelling maps to one canonical Name of the form
// K#####.## (five-digit star number, two-digit candidate suffix), or the
// star-only prefix K#####.
package koi

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentstation/kepmap/pkg/errors"
)

// MaxStarNumber is the largest star number the five-digit form can hold.
const MaxStarNumber = 99999

// Name is a canonical KOI identifier, either K#####.## or K#####.
type Name string

var (
	candidateForm = regexp.MustCompile(`^K(\d{5})\.(\d{2})$`)
	starForm      = regexp.MustCompile(`^K(\d{5})$`)
)

// String implements fmt.Stringer.
func (n Name) String() string {
	return string(n)
}

// IsStar reports whether n is a star-only name.
func (n Name) IsStar() bool {
	return starForm.MatchString(string(n))
}

// Valid reports whether n has either canonical form.
func (n Name) Valid() bool {
	return n.IsStar() || candidateForm.MatchString(string(n))
}

// Star returns the star-only prefix K#####.
func (n Name) Star() Name {
	if len(n) > 6 {
		return n[:6]
	}
	return n
}

// StarNumber returns the integer star number.
func (n Name) StarNumber() int {
	v, _ := strconv.Atoi(string(n.Star()[1:]))
	return v
}

// Candidate returns the two-digit candidate suffix, 0 for star-only names.
func (n Name) Candidate() int {
	m := candidateForm.FindStringSubmatch(string(n))
	if m == nil {
		return 0
	}
	v, _ := strconv.Atoi(m[2])
	return v
}

// Number returns the name as a bare number: 123.01 for K00123.01, 123 for K00123.
func (n Name) Number() float64 {
	return float64(n.StarNumber()) + float64(n.Candidate())/100
}

// Options select the projection Normalize returns.
type Options struct {
	StarOnly bool
	AsNumber bool
}

// Option configures Normalize.
type Option func(*Options)

// StarOnly truncates the result to the star-number prefix.
func StarOnly() Option {
	return func(o *Options) { o.StarOnly = true }
}

// AsNumber returns an int (star-only) or float64 (full form) instead of a Name.
func AsNumber() Option {
	return func(o *Options) { o.AsNumber = true }
}

// Normalize parses raw and applies the requested projection. The result is a
// Name, or with AsNumber an int (StarOnly) or a float64.
func Normalize(raw any, opts ...Option) (any, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	name, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	switch {
	case o.StarOnly && o.AsNumber:
		return name.StarNumber(), nil
	case o.StarOnly:
		return name.Star(), nil
	case o.AsNumber:
		return name.Number(), nil
	default:
		return name, nil
	}
}

// StarName returns the star-only canonical name of raw.
func StarName(raw any) (Name, error) {
	name, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return name.Star(), nil
}

// StarNumber returns the integer star number of raw.
func StarNumber(raw any) (int, error) {
	name, err := Parse(raw)
	if err != nil {
		return 0, err
	}
	return name.StarNumber(), nil
}

// MustParse is Parse for identifiers known to be valid; it panics otherwise.
func MustParse(raw any) Name {
	name, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return name
}

// Parse converts raw into the full candidate form K#####.##.
//
// Integers are star numbers with candidate suffix .01. Floats are read as
// star.candidate rounded to two decimals. Strings go through the ordered
// matchers in parseString.
func Parse(raw any) (Name, error) {
	switch v := raw.(type) {
	case Name:
		return parseString(string(v))
	case string:
		return parseString(v)
	case fmt.Stringer:
		return parseString(v.String())
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fromStar(rv.Int(), raw)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > MaxStarNumber {
			return "", errors.NewInvalidIdentifierError(raw, "star number out of range")
		}
		return fromStar(int64(rv.Uint()), raw)
	case reflect.Float32, reflect.Float64:
		return fromFloat(rv.Float(), raw)
	default:
		return "", errors.NewInvalidIdentifierError(raw, fmt.Sprintf("unsupported type %T", raw))
	}
}

// matcher recognizes one spelling and returns its canonical name.
type matcher struct {
	name    string
	pattern *regexp.Regexp
	build   func(m []string) (Name, bool)
}

// matchers run in order and every one is tried; a later match replaces an
// earlier one. The more specific KOI-prefixed and already-canonical forms sit
// at the end so they win over the bare numeric readings.
var matchers = []matcher{
	{
		name:    "bare integer",
		pattern: regexp.MustCompile(`^(\d+)$`),
		build:   func(m []string) (Name, bool) { return starDigits(m[1]) },
	},
	{
		name:    "bare decimal",
		pattern: regexp.MustCompile(`^(\d+\.\d+)$`),
		build:   func(m []string) (Name, bool) { return decimalDigits(m[1]) },
	},
	{
		name:    "star prefix",
		pattern: regexp.MustCompile(`(K\d{5})[A-Z]?$`),
		build:   func(m []string) (Name, bool) { return Name(m[1] + ".01"), true },
	},
	{
		name:    "canonical",
		pattern: regexp.MustCompile(`(K\d{5}\.\d{2})`),
		build:   func(m []string) (Name, bool) { return Name(m[1]), true },
	},
	{
		name:    "koi integer",
		pattern: regexp.MustCompile(`[Kk][Oo][Ii][-_]?(\d+)$`),
		build:   func(m []string) (Name, bool) { return starDigits(m[1]) },
	},
	{
		name:    "koi decimal",
		pattern: regexp.MustCompile(`[Kk][Oo][Ii][-_]?(\d+\.\d+)`),
		build:   func(m []string) (Name, bool) { return decimalDigits(m[1]) },
	},
}

// parseString applies every matcher in order; the last one that matches wins.
func parseString(raw string) (Name, error) {
	s := strings.TrimSpace(raw)

	var name Name
	for _, mt := range matchers {
		m := mt.pattern.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		if n, ok := mt.build(m); ok {
			name = n
		}
	}

	if name == "" {
		return "", errors.NewInvalidIdentifierError(raw, "")
	}
	return name, nil
}

func starDigits(digits string) (Name, bool) {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n > MaxStarNumber {
		return "", false
	}
	return format(n, 1), true
}

func decimalDigits(digits string) (Name, bool) {
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return "", false
	}
	name, err := fromFloat(f, digits)
	return name, err == nil
}

func fromStar(n int64, raw any) (Name, error) {
	if n < 0 || n > MaxStarNumber {
		return "", errors.NewInvalidIdentifierError(raw, "star number out of range")
	}
	return format(n, 1), nil
}

func fromFloat(f float64, raw any) (Name, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return "", errors.NewInvalidIdentifierError(raw, "not a finite positive number")
	}
	// FormatFloat rounds the exact binary value once, like printf %.2f.
	whole, frac, _ := strings.Cut(strconv.FormatFloat(f, 'f', 2, 64), ".")
	star, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || star > MaxStarNumber {
		return "", errors.NewInvalidIdentifierError(raw, "star number out of range")
	}
	candidate, _ := strconv.ParseInt(frac, 10, 64)
	return format(star, candidate), nil
}

func format(star, candidate int64) Name {
	return Name(fmt.Sprintf("K%05d.%02d", star, candidate))
}
