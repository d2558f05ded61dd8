package units

import (
	"errors"
	"testing"
	"time"
)

func TestNormalizeVolume(t *testing.T) {
	tests := []struct {
		unit      string
		value     float64
		wantValue float64
		wantUnit  Unit
	}{
		{"milliliter", 120, 120, Milliliter},
		{"milliliters", 60, 60, Milliliter},
		{"ml", 90, 90, Milliliter},
		{"ML", 90, 90, Milliliter},
		{"ounce", 4, 4, Ounce},
		{"ounces", 6, 6, Ounce},
		{"oz", 3, 3, Ounce},
		{"cup", 1, 8, Ounce},
		{"cups", 1.5, 12, Ounce},
		{"CUPS", 1.5, 12, Ounce},
		{" oz ", 2, 2, Ounce},
	}
	for _, tt := range tests {
		got, unit, err := NormalizeVolume(tt.value, tt.unit)
		if err != nil {
			t.Fatalf("NormalizeVolume(%v, %q): unexpected error: %v", tt.value, tt.unit, err)
		}
		if got != tt.wantValue || unit != tt.wantUnit {
			t.Fatalf("NormalizeVolume(%v, %q) = (%v, %q), want (%v, %q)",
				tt.value, tt.unit, got, unit, tt.wantValue, tt.wantUnit)
		}
	}
}

func TestNormalizeVolume_UnknownUnit(t *testing.T) {
	for _, unit := range []string{"liter", "gallon", "", "8"} {
		_, _, err := NormalizeVolume(1, unit)
		if !errors.Is(err, ErrUnknownUnit) {
			t.Fatalf("NormalizeVolume(1, %q): expected ErrUnknownUnit, got %v", unit, err)
		}
	}
}

func TestNormalizeDuration(t *testing.T) {
	tests := []struct {
		raw         string
		wantMinutes int
	}{
		{"PT7M", 7},
		{"7", 7},
		{"PT1H", 60},
		{"PT90S", 2},   // 1.5 minutes rounds half away from zero
		{"PT150S", 3},  // 2.5 minutes rounds half away from zero
		{"7.5", 8},
		{"0", 0},
		{"PT0M", 0},
		{"PT10M30S", 11},
	}
	for _, tt := range tests {
		minutes, span, err := NormalizeDuration(tt.raw)
		if err != nil {
			t.Fatalf("NormalizeDuration(%q): unexpected error: %v", tt.raw, err)
		}
		if minutes != tt.wantMinutes {
			t.Fatalf("NormalizeDuration(%q) = %d minutes, want %d", tt.raw, minutes, tt.wantMinutes)
		}
		if span != time.Duration(tt.wantMinutes)*time.Minute {
			t.Fatalf("NormalizeDuration(%q) span = %v, want %v", tt.raw, span, time.Duration(tt.wantMinutes)*time.Minute)
		}
	}
}

func TestNormalizeDuration_EquivalentForms(t *testing.T) {
	isoMin, isoSpan, err := NormalizeDuration("PT7M")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	plainMin, plainSpan, err := NormalizeDuration("7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if isoMin != plainMin || isoSpan != plainSpan {
		t.Fatalf("PT7M = (%d, %v), 7 = (%d, %v); want identical", isoMin, isoSpan, plainMin, plainSpan)
	}
}

func TestNormalizeDuration_Invalid(t *testing.T) {
	for _, raw := range []string{"", "soon", "P", "-5", "-PT5M"} {
		_, _, err := NormalizeDuration(raw)
		if !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("NormalizeDuration(%q): expected ErrInvalidDuration, got %v", raw, err)
		}
	}
}
