package domain

import (
	"encoding/json"
	"math"
	"testing"
)

func TestStockCoverDaysMarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		cover StockCoverDays
		want  string
	}{
		{"finite value", StockCoverDays(12.5), "12.5"},
		{"zero", StockCoverDays(0), "0"},
		{"unbounded renders null", StockCoverDays(math.Inf(1)), "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.cover)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStockCoverDaysRoundTrip(t *testing.T) {
	for _, cover := range []StockCoverDays{0, 42.25, StockCoverDays(math.Inf(1))} {
		data, err := json.Marshal(cover)
		if err != nil {
			t.Fatalf("Marshal(%v): %v", cover, err)
		}

		var back StockCoverDays
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("Unmarshal(%s): %v", data, err)
		}

		if cover.Unbounded() {
			if !back.Unbounded() {
				t.Errorf("unbounded cover did not survive the round trip: %v", back)
			}
			continue
		}
		if back != cover {
			t.Errorf("round trip changed %v to %v", cover, back)
		}
	}
}
