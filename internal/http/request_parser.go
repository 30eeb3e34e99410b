// Package http provides HTTP server and handler implementations.
//
// This file implements parsing of dashboard filter selections from query
// strings and forms.

package http

import (
	"errors"
	"fmt"
	"net/url"
	"unicode/utf8"

	"canestats/internal/core"
)

// Query parameter names shared by the API and the HTML form.
const (
	ParamDivision    = "division"
	ParamDistrict    = "district"
	ParamTaluka      = "taluka"
	ParamYear        = "year"
	ParamMonth       = "month"
	ParamBaseMonth   = "base"
	ParamTargetMonth = "target"
)

// maxParamRunes bounds a single filter value; real names are far shorter.
const maxParamRunes = 128

// ErrParamTooLong is returned for a filter value longer than maxParamRunes.
var ErrParamTooLong = errors.New("query parameter too long")

// ParseFilters builds a validated FilterState from query values. A district
// without a division, or a taluka without a district, is rejected.
func ParseFilters(query url.Values) (core.FilterState, error) {
	var vals [5]string
	for i, key := range []string{ParamDivision, ParamDistrict, ParamTaluka, ParamYear, ParamMonth} {
		v, err := param(query, key)
		if err != nil {
			return core.FilterState{}, err
		}
		vals[i] = v
	}
	return core.NewFilterState(vals[0], vals[1], vals[2], vals[3], vals[4])
}

// FilterQuery encodes f back into query values, omitting empty selections.
func FilterQuery(f core.FilterState) url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set(ParamDivision, f.Division())
	set(ParamDistrict, f.District())
	set(ParamTaluka, f.Taluka())
	set(ParamYear, f.Year())
	set(ParamMonth, f.Month())
	return q
}

// CompareMonths returns the base and target months requested, empty when
// the caller wants the configured defaults.
func CompareMonths(query url.Values) (base, target string, err error) {
	if base, err = param(query, ParamBaseMonth); err != nil {
		return "", "", err
	}
	if target, err = param(query, ParamTargetMonth); err != nil {
		return "", "", err
	}
	return base, target, nil
}

// param reads one sanitized value. Over-long values are rejected rather
// than cut, since a shortened name would match a different record.
func param(query url.Values, key string) (string, error) {
	v := sanitizeInput(query.Get(key))
	if utf8.RuneCountInString(v) > maxParamRunes {
		return "", fmt.Errorf("%w: %s exceeds %d characters", ErrParamTooLong, key, maxParamRunes)
	}
	return v, nil
}
