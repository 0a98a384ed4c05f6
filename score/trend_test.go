package score

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		previous int
		want     Trend
	}{
		// Convention: nothing can decrease from a zero previous window
		{"both zero", 0, 0, TrendStable},
		{"from zero is increasing", 3, 0, TrendIncreasing},
		{"to zero is decreasing", 0, 5, TrendDecreasing},
		{"big jump", 10, 5, TrendIncreasing},
		{"big drop", 3, 7, TrendDecreasing},
		{"within band is stable", 11, 10, TrendStable},
		{"exactly +20% is stable", 12, 10, TrendStable},
		{"just over +20%", 13, 10, TrendIncreasing},
		{"exactly -20% is stable", 8, 10, TrendStable},
		{"just under -20%", 7, 10, TrendDecreasing},
		{"unchanged", 4, 4, TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.current, tt.previous); got != tt.want {
				t.Errorf("Classify(%d, %d) = %v, want %v", tt.current, tt.previous, got, tt.want)
			}
		})
	}
}
