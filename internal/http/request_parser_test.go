package http

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"canestats/internal/core"
)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    [5]string
		wantErr error
	}{
		{
			name:  "empty",
			query: "",
		},
		{
			name:  "full cascade",
			query: "division=Pune&district=Satara&taluka=Karad&year=2024&month=Jan",
			want:  [5]string{"Pune", "Satara", "Karad", "2024", "Jan"},
		},
		{
			name:  "trims and strips control characters",
			query: "division=%20Pune%00%20&year=2024",
			want:  [5]string{"Pune", "", "", "2024", ""},
		},
		{
			name:    "district without division",
			query:   "district=Satara",
			wantErr: core.ErrDistrictWithoutDivision,
		},
		{
			name:    "taluka without district",
			query:   "division=Pune&taluka=Karad",
			wantErr: core.ErrTalukaWithoutDistrict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}
			f, err := ParseFilters(q)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err=%v want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := [5]string{f.Division(), f.District(), f.Taluka(), f.Year(), f.Month()}
			if got != tt.want {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestFilterQueryRoundTrip(t *testing.T) {
	f, err := core.NewFilterState("अहमदनगर", "Satara", "", "2025", "ऑगस्ट २०२५")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	q := FilterQuery(f)
	if q.Has(ParamTaluka) {
		t.Fatalf("empty taluka should be omitted: %v", q)
	}
	back, err := ParseFilters(q)
	if err != nil {
		t.Fatalf("ParseFilters: %v", err)
	}
	if back.Key() != f.Key() {
		t.Fatalf("round trip changed filters: %q != %q", back.Key(), f.Key())
	}
}

func TestParamLength(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"devanagari at limit", strings.Repeat("ऑ", maxParamRunes), false},
		{"devanagari over limit", strings.Repeat("ऑ", maxParamRunes+1), true},
		{"ascii over limit", strings.Repeat("a", maxParamRunes+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := param(url.Values{ParamDivision: {tt.value}}, ParamDivision)
			if tt.wantErr {
				if !errors.Is(err, ErrParamTooLong) {
					t.Fatalf("err=%v want %v", err, ErrParamTooLong)
				}
				return
			}
			if err != nil || v != tt.value {
				t.Fatalf("value changed or rejected: err=%v", err)
			}
		})
	}

	q := url.Values{ParamDivision: {strings.Repeat("ऑ", maxParamRunes+1)}}
	if _, err := ParseFilters(q); !errors.Is(err, ErrParamTooLong) {
		t.Fatalf("ParseFilters err=%v", err)
	}
}

func TestCompareMonths(t *testing.T) {
	base, target, err := CompareMonths(url.Values{"base": {" Jan "}})
	if err != nil || base != "Jan" || target != "" {
		t.Fatalf("got %q %q %v", base, target, err)
	}
	if _, _, err := CompareMonths(url.Values{"target": {strings.Repeat("x", maxParamRunes+1)}}); !errors.Is(err, ErrParamTooLong) {
		t.Fatalf("expected ErrParamTooLong, got %v", err)
	}
}

func TestFormatHectares(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999.4, "999"},
		{1000, "1,000"},
		{1234567.5, "1,234,568"},
		{-4200, "-4,200"},
	}
	for _, tt := range tests {
		if got := formatHectares(tt.in); got != tt.want {
			t.Errorf("formatHectares(%v)=%q want %q", tt.in, got, tt.want)
		}
	}
}

func TestBarPercent(t *testing.T) {
	tests := []struct {
		v, max float64
		want   int
	}{
		{0, 10, 0},
		{5, 0, 0},
		{5, 10, 50},
		{0.001, 10, 1},
		{20, 10, 100},
	}
	for _, tt := range tests {
		if got := barPercent(tt.v, tt.max); got != tt.want {
			t.Errorf("barPercent(%v,%v)=%d want %d", tt.v, tt.max, got, tt.want)
		}
	}
}
