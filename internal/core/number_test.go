package core

import (
	"encoding/json"
	"testing"
)

func TestNumberUnmarshal(t *testing.T) {
	cases := []struct {
		in        string
		sum       float64
		avg       float64
		countable bool
	}{
		{`null`, 0, 0, false},
		{`12.5`, 12.5, 12.5, true},
		{`0`, 0, 0, false},
		{`-3`, -3, 0, false},
		{`"40"`, 40, 40, true},
		{`"40%"`, 0, 40, true},
		{`" 7.5 "`, 7.5, 7.5, true},
		{`"1e2"`, 100, 100, true},
		{`"abc"`, 0, 0, false},
		{`"0"`, 0, 0, false},
		{`"-2"`, -2, 0, false},
		{`""`, 0, 0, false},
		{`true`, 0, 0, false},
	}
	for i, tc := range cases {
		var n Number
		if err := json.Unmarshal([]byte(tc.in), &n); err != nil {
			t.Fatalf("case %d (%s): unmarshal: %v", i, tc.in, err)
		}
		if got := n.Float(); got != tc.sum {
			t.Fatalf("case %d (%s): Float=%v want %v", i, tc.in, got, tc.sum)
		}
		v, ok := n.Countable()
		if ok != tc.countable {
			t.Fatalf("case %d (%s): countable=%v want %v", i, tc.in, ok, tc.countable)
		}
		if ok && v != tc.avg {
			t.Fatalf("case %d (%s): avg value=%v want %v", i, tc.in, v, tc.avg)
		}
	}
}

func TestNumberMissingField(t *testing.T) {
	var rec TalukaRecord
	if err := json.Unmarshal([]byte(`{"taluka":"P","suru_ha":10}`), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.SuruHa.Float() != 10 {
		t.Fatalf("suru_ha=%v", rec.SuruHa.Float())
	}
	if rec.TotalAreaHa.IsSet() || rec.TotalAreaHa.Float() != 0 {
		t.Fatalf("missing total_area_ha should be unset and zero")
	}
}

func TestNumberMarshalKeepsShape(t *testing.T) {
	in := `{"a":12,"b":"40","c":null}`
	var m map[string]Number
	if err := json.Unmarshal([]byte(in), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != in {
		t.Fatalf("got %s want %s", out, in)
	}
}

func TestParseCell(t *testing.T) {
	if n := ParseCell("1,234.5"); n.IsText() || n.Float() != 1234.5 {
		t.Fatalf("numeric cell: %+v", n)
	}
	if n := ParseCell("  "); n.IsSet() {
		t.Fatalf("blank cell should be unset")
	}
	if n := ParseCell("12 ha"); !n.IsText() || n.Float() != 0 {
		t.Fatalf("text cell: %+v", n)
	}
	if v, ok := ParseCell("12 ha").Countable(); !ok || v != 12 {
		t.Fatalf("text cell average value=%v ok=%v", v, ok)
	}
}
