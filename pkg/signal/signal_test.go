package signal

import "testing"

func TestSeverityRank(t *testing.T) {
	tests := []struct {
		name   string
		lower  Severity
		higher Severity
	}{
		{"low below medium", SeverityLow, SeverityMedium},
		{"medium below high", SeverityMedium, SeverityHigh},
		{"high below critical", SeverityHigh, SeverityCritical},
		{"unknown below low", Severity("BOGUS"), SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.lower.Rank() >= tt.higher.Rank() {
				t.Errorf("expected %s (%d) < %s (%d)",
					tt.lower, tt.lower.Rank(), tt.higher, tt.higher.Rank())
			}
		})
	}
}

func TestSeverityValid(t *testing.T) {
	for _, s := range []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Severity("EXTREME").Valid() {
		t.Error("unknown severity should not be valid")
	}
}

func TestSeverityDowngrade(t *testing.T) {
	tests := []struct {
		name string
		in   Severity
		want Severity
	}{
		{"critical to high", SeverityCritical, SeverityHigh},
		{"high to medium", SeverityHigh, SeverityMedium},
		{"medium to low", SeverityMedium, SeverityLow},
		{"low stays low", SeverityLow, SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Downgrade(); got != tt.want {
				t.Errorf("Downgrade(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
