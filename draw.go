package lotofacil

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Draw is one lottery outcome: 15 distinct numbers in [1,25], order irrelevant
type Draw []int

// Validate checks the draw invariant: 15 unique numbers within [1,25]
func (d Draw) Validate() error {
	if len(d) == 0 {
		return ErrEmptyInput
	}
	if len(d) != DrawSize {
		return ErrWrongCount.WithDetails(fmt.Sprintf("got %d", len(d)))
	}

	seen := make(map[int]struct{}, DrawSize)
	for _, n := range d {
		if n < MinNumber || n > MaxNumber {
			return ErrOutOfRange.WithDetails(fmt.Sprintf("got %d", n))
		}
		if _, dup := seen[n]; dup {
			return ErrDuplicateValue.WithDetails(fmt.Sprintf("%d repeats", n))
		}
		seen[n] = struct{}{}
	}
	return nil
}

// Sorted returns an ascending copy of the draw
func (d Draw) Sorted() Draw {
	out := slices.Clone(d)
	slices.Sort(out)
	return out
}

// Contains reports whether n is part of the draw
func (d Draw) Contains(n int) bool { return lo.Contains(d, n) }

// String renders the draw as a comma-separated list
func (d Draw) String() string {
	return strings.Join(lo.Map(d, func(n int, _ int) string { return strconv.Itoa(n) }), ", ")
}

// ParseDraw parses comma-separated text into a validated Draw.
//
// Tokens are trimmed and empty tokens dropped. The first violation found is
// reported, checked in the order empty input, count, integer syntax, range,
// duplicates. field names the input in the returned error.
func ParseDraw(field, text string) (Draw, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput.WithField(field)
	}

	parts := lo.Filter(
		lo.Map(strings.Split(text, ","), func(p string, _ int) string { return strings.TrimSpace(p) }),
		func(p string, _ int) bool { return p != "" },
	)
	if len(parts) != DrawSize {
		return nil, ErrWrongCount.WithField(field).WithDetails(fmt.Sprintf("got %d", len(parts)))
	}

	draw := make(Draw, 0, DrawSize)
	seen := make(map[int]struct{}, DrawSize)
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, ErrNotAnInteger.WithField(field).WithDetails(fmt.Sprintf("%q", part)).WithCause(err)
		}
		if n < MinNumber || n > MaxNumber {
			return nil, ErrOutOfRange.WithField(field).WithDetails(fmt.Sprintf("got %d", n))
		}
		if _, dup := seen[n]; dup {
			return nil, ErrDuplicateValue.WithField(field).WithDetails(fmt.Sprintf("%d repeats", n))
		}
		seen[n] = struct{}{}
		draw = append(draw, n)
	}

	return draw, nil
}

// Mode selects the weight profile used by the generator
type Mode string

const (
	ModeBalanced     Mode = "balanced"
	ModeConservative Mode = "conservative"
	ModeAggressive   Mode = "aggressive"
)

// ModeWeights are the three coefficients a Mode contributes to a candidate's weight
type ModeWeights struct {
	NotInResult int `json:"not_in_result"` // bonus for numbers absent from the current result
	AboveMean   int `json:"above_mean"`    // multiplier for frequency above the mean
	BelowMean   int `json:"below_mean"`    // multiplier for frequency below the mean (aggressive only)
}

var modeWeights = map[Mode]ModeWeights{
	ModeBalanced:     {NotInResult: 5, AboveMean: 2, BelowMean: 0},
	ModeConservative: {NotInResult: 3, AboveMean: 5, BelowMean: 0},
	ModeAggressive:   {NotInResult: 7, AboveMean: 1, BelowMean: 4},
}

// ParseMode parses a mode name; the empty string means balanced
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeBalanced, nil
	}
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := modeWeights[m]; !ok {
		return "", ErrInvalidMode.WithDetails(fmt.Sprintf("%q", s))
	}
	return m, nil
}

// Weights returns the coefficients of the mode
func (m Mode) Weights() ModeWeights { return modeWeights[m] }

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	_, ok := modeWeights[m]
	return ok
}

// NumberSet is a set of ticket numbers used as an exclude or include filter
type NumberSet map[int]struct{}

// NewNumberSet builds a set from the given numbers
func NewNumberSet(nums ...int) NumberSet {
	s := make(NumberSet, len(nums))
	for _, n := range nums {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether n is in the set
func (s NumberSet) Has(n int) bool {
	_, ok := s[n]
	return ok
}

// Sorted returns the members in ascending order
func (s NumberSet) Sorted() []int {
	out := lo.Keys(s)
	slices.Sort(out)
	return out
}

// Validate checks that every member is a ticket number
func (s NumberSet) Validate() error {
	for n := range s {
		if n < MinNumber || n > MaxNumber {
			return ErrOutOfRange.WithDetails(fmt.Sprintf("got %d", n))
		}
	}
	return nil
}

// allNumbers returns 1..25 in ascending order
func allNumbers() []int { return lo.RangeFrom(MinNumber, MaxNumber-MinNumber+1) }
