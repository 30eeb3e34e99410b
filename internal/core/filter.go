package core

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrDistrictWithoutDivision = errors.New("district selected without a division")
	ErrTalukaWithoutDistrict   = errors.New("taluka selected without a district")
)

// FilterState is the immutable set of dashboard selections. Transitions
// return a new value and keep the cascade consistent: a coarser selection
// clears every finer one, and a year change clears the month.
type FilterState struct {
	division string
	district string
	taluka   string
	year     string
	month    string
}

// NewFilterState builds a state by applying the transitions in cascade
// order and validating the result.
func NewFilterState(division, district, taluka, year, month string) (FilterState, error) {
	f := FilterState{}.
		WithDivision(division).
		WithDistrict(district).
		WithTaluka(taluka).
		WithYear(year).
		WithMonth(month)
	if err := f.Validate(); err != nil {
		return FilterState{}, err
	}
	return f, nil
}

func (f FilterState) Division() string { return f.division }
func (f FilterState) District() string { return f.district }
func (f FilterState) Taluka() string   { return f.taluka }
func (f FilterState) Year() string     { return f.year }
func (f FilterState) Month() string    { return f.month }

// WithDivision selects a division and clears district and taluka.
func (f FilterState) WithDivision(division string) FilterState {
	f.division = strings.TrimSpace(division)
	f.district = ""
	f.taluka = ""
	return f
}

// WithDistrict selects a district and clears taluka.
func (f FilterState) WithDistrict(district string) FilterState {
	f.district = strings.TrimSpace(district)
	f.taluka = ""
	return f
}

func (f FilterState) WithTaluka(taluka string) FilterState {
	f.taluka = strings.TrimSpace(taluka)
	return f
}

// WithYear selects a year. The month is cleared when the year changes
// because month options are computed per year.
func (f FilterState) WithYear(year string) FilterState {
	year = strings.TrimSpace(year)
	if year != f.year {
		f.month = ""
	}
	f.year = year
	return f
}

func (f FilterState) WithMonth(month string) FilterState {
	f.month = strings.TrimSpace(month)
	return f
}

// Reset returns the default, unfiltered state.
func (f FilterState) Reset() FilterState {
	return FilterState{}
}

// IsZero reports whether no filter is set.
func (f FilterState) IsZero() bool {
	return f == FilterState{}
}

func (f FilterState) Validate() error {
	if f.district != "" && f.division == "" {
		return ErrDistrictWithoutDivision
	}
	if f.taluka != "" && f.district == "" {
		return ErrTalukaWithoutDistrict
	}
	return nil
}

// Key is a composite of every filter value, suitable as a memoization key.
func (f FilterState) Key() string {
	return strings.Join([]string{f.division, f.district, f.taluka, f.year, f.month}, "\x1f")
}

// Session is the dashboard session handed over by the session gate.
type Session struct {
	Authenticated bool
	Filters       FilterState
}

// Logout ends the session and resets every filter.
func (s Session) Logout() Session {
	return Session{Filters: s.Filters.Reset()}
}

type filterJSON struct {
	Division string `json:"division"`
	District string `json:"district"`
	Taluka   string `json:"taluka"`
	Year     string `json:"year"`
	Month    string `json:"month"`
}

func (f FilterState) MarshalJSON() ([]byte, error) {
	return json.Marshal(filterJSON{
		Division: f.division,
		District: f.district,
		Taluka:   f.taluka,
		Year:     f.year,
		Month:    f.month,
	})
}
