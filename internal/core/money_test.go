package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out Amount
		ok  bool
	}{
		{"1", 1, true},
		{"1.0", 1, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{"1,234.50", 1234.5, true},
		{" 2.50 ", 2.5, true},
		{"0", 0, true},
		{"-1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestAmountUnmarshalLenient(t *testing.T) {
	cases := []struct {
		raw  string
		want Amount
	}{
		{`{"amount": 12.5}`, 12.5},
		{`{"amount": "12.5"}`, 12.5},
		{`{"amount": "lots"}`, 0},
		{`{"amount": null}`, 0},
		{`{"amount": true}`, 0},
		{`{}`, 0},
	}
	for _, tc := range cases {
		var v struct {
			Amount Amount `json:"amount"`
		}
		if err := json.Unmarshal([]byte(tc.raw), &v); err != nil {
			t.Fatalf("%s: unexpected error %v", tc.raw, err)
		}
		if v.Amount != tc.want {
			t.Fatalf("%s: got %v want %v", tc.raw, v.Amount, tc.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[Amount]string{
		0:         "0.00",
		12.5:      "12.50",
		1234.567:  "1,234.57",
		-1000000:  "-1,000,000.00",
		999999.99: "999,999.99",
	}
	for in, want := range cases {
		if got := FormatAmount(in); got != want {
			t.Fatalf("FormatAmount(%v) = %q, want %q", in, got, want)
		}
	}
}
