// Package core holds the transaction model, its validation rules and the
// error taxonomy shared by every layer.
//
// This file contains the amount type and its lenient decoding.
package core

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Amount is a monetary value in the account currency.
//
// Decoding is lenient: a JSON number or a numeric string is accepted and
// anything else decodes to zero, so one malformed record never aborts a
// whole collection.
type Amount float64

// Float returns the amount as float64, mapping NaN and infinities to zero.
func (a Amount) Float() float64 {
	f := float64(a)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Positive reports whether the amount is a finite value greater than zero.
func (a Amount) Positive() bool {
	f := float64(a)
	return f > 0 && !math.IsInf(f, 0)
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*a = 0
			return nil
		}
		v, err := ParseAmount(s)
		if err != nil {
			*a = 0
			return nil
		}
		*a = v
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*a = 0
		return nil
	}
	*a = Amount(f)
	return nil
}

// ParseAmount parses a decimal string. Both dot (12.34) and comma (12,34)
// decimal separators are accepted. Negative values are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,5")  -> 12.5, nil
//	ParseAmount("-1")    -> 0, error
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, NewValidationError(msgAmount)
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	if strings.HasPrefix(s, "-") {
		return 0, NewValidationError(msgAmount)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, NewValidationError(msgAmount)
	}
	return Amount(f), nil
}

// FormatAmount renders a with two decimals and comma thousands separators.
func FormatAmount(a Amount) string {
	f := a.Float()
	neg := f < 0
	if neg {
		f = -f
	}
	s := strconv.FormatFloat(f, 'f', 2, 64)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + frac
	if neg {
		return "-" + out
	}
	return out
}
