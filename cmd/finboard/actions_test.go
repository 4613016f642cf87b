package main

import (
	"testing"

	"finboard/internal/intake"
)

func TestParsePotMove(t *testing.T) {
	tests := []struct {
		in      string
		want    potMove
		wantErr bool
	}{
		{in: "1:50", want: potMove{id: 1, amount: "50"}},
		{in: " 42 : 12,50", want: potMove{id: 42, amount: "12,50"}},
		{in: "1", wantErr: true},
		{in: "x:5", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parsePotMove(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("%q: error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("%q: got %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseNewPot(t *testing.T) {
	name, target, err := parseNewPot("Trip: Japan:2500")
	if err != nil {
		t.Fatal(err)
	}
	if name != "Trip: Japan" || target != "2500" {
		t.Errorf("got %q %q", name, target)
	}
	if _, _, err := parseNewPot("Holiday"); err == nil {
		t.Error("expected error without a target")
	}
}

func TestParseDraft(t *testing.T) {
	got := parseDraft("Coffee|-3.20|Dining Out|2024-08-19")
	want := intake.Draft{Name: "Coffee", Amount: "-3.20", Category: "Dining Out", Date: "2024-08-19"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if short := parseDraft("Coffee|1"); short.Category != "" || short.Date != "" {
		t.Errorf("expected empty trailing fields, got %+v", short)
	}
}
