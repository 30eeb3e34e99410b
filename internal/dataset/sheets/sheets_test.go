package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func TestNew_MissingSettings(t *testing.T) {
	if _, err := New(context.Background(), Options{}); err == nil || err.Error() != "missing spreadsheet id" {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := New(context.Background(), Options{SpreadsheetID: "id"})
	if err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = New(context.Background(), Options{SpreadsheetID: "id", CredentialsFile: "/does/not/exist.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Load(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"range": "Talukas!A1:F3",
			"majorDimension": "ROWS",
			"values": [
				["Division", "District", "Taluka", "Year", "Total Area (ha)", "Soil Moisture Percent"],
				["Pune", "Satara", "Karad", "2024", 120.5, "40"],
				["Pune", "Satara", "Wai", 2024, 0, true]
			]
		}`))
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	divs, err := NewWithService(svc, "sheet-id", "Talukas").Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.Contains(gotPath, "/spreadsheets/sheet-id/values/Talukas") {
		t.Fatalf("path=%s", gotPath)
	}
	talukas := divs[0].Districts[0].Talukas
	if len(talukas) != 2 || talukas[0].TotalAreaHa.Float() != 120.5 || talukas[1].Year != "2024" {
		t.Fatalf("talukas=%+v", talukas)
	}
	if v, ok := talukas[0].SoilMoisturePercent.Countable(); !ok || v != 40 {
		t.Fatalf("soil moisture=%v", v)
	}
}

func TestClient_LoadWithoutService(t *testing.T) {
	if _, err := (&Client{}).Load(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCellString(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{float64(2024), "2024"},
		{1.25, "1.25"},
		{true, "true"},
	}
	for _, tc := range cases {
		if got := cellString(tc.in); got != tc.want {
			t.Fatalf("cellString(%v)=%q want %q", tc.in, got, tc.want)
		}
	}
}
