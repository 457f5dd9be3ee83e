package engine

import "testing"

func TestShares(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"channel share", ChannelShare(30, 100), 0.3},
		{"channel share zero total", ChannelShare(30, 0), 0},
		{"location share", LocationShare(10, 40), 0.25},
		{"location share zero channel", LocationShare(10, 0), 0},
		{"style share", StyleShare(50, 200), 0.25},
		{"sku share", SKUShare(5, 50), 0.1},
		{"sku share full", SKUShare(50, 50), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestCombinedShareIsProduct(t *testing.T) {
	got := CombinedShare(0.5, 0.4, 0.25, 0.1)
	want := 0.5 * 0.4 * 0.25 * 0.1
	if got != want {
		t.Errorf("CombinedShare = %v, want %v", got, want)
	}
}

func TestSharesStayWithinUnitInterval(t *testing.T) {
	// A component sale can never exceed its parent total, so every share
	// and the combined product must land in [0,1].
	cases := [][2]int{{0, 0}, {0, 10}, {1, 10}, {10, 10}}
	for _, c := range cases {
		for _, share := range []float64{
			ChannelShare(c[0], c[1]),
			LocationShare(c[0], c[1]),
			StyleShare(c[0], c[1]),
			SKUShare(c[0], c[1]),
		} {
			if share < 0 || share > 1 {
				t.Errorf("share for %d/%d = %v, out of [0,1]", c[0], c[1], share)
			}
		}
	}

	combined := CombinedShare(1, 1, 1, 1)
	if combined != 1 {
		t.Errorf("CombinedShare(1,1,1,1) = %v, want 1", combined)
	}
}
