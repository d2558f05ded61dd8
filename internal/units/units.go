// Package units normalizes volume units and duration representations into
// the tracking service's canonical forms.
package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	isodur "github.com/sosodev/duration"
)

// Unit is a canonical volume unit. The service only distinguishes metric
// from english measure, so everything collapses to one of these two.
type Unit string

const (
	Milliliter Unit = "milliliter"
	Ounce      Unit = "ounce"
)

var (
	ErrUnknownUnit     = errors.New("units: unknown unit")
	ErrInvalidDuration = errors.New("units: invalid duration")
)

// NormalizeVolume maps a raw unit token (case-insensitive) to a canonical
// unit, converting the value where the token implies it: cups become
// ounces at 8 oz per cup.
func NormalizeVolume(value float64, unit string) (float64, Unit, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "milliliter", "milliliters", "ml":
		return value, Milliliter, nil
	case "ounce", "ounces", "oz":
		return value, Ounce, nil
	case "cup", "cups":
		return value * 8, Ounce, nil
	default:
		return 0, "", fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
}

// NormalizeDuration parses a duration given either as an ISO 8601 string
// ("PT7M", the form voice front-ends produce) or a plain minute count
// ("7", "7.5") and returns whole minutes plus the same span as a
// time.Duration, so equal inputs in either form yield identical events.
//
// Rounding is to the nearest whole minute, half away from zero
// (math.Round over total seconds / 60).
func NormalizeDuration(raw string) (int, time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, fmt.Errorf("%w: empty", ErrInvalidDuration)
	}

	var span time.Duration
	if p := strings.ToUpper(raw); strings.HasPrefix(p, "P") || strings.HasPrefix(p, "-P") {
		d, err := isodur.Parse(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
		}
		span = d.ToTimeDuration()
	} else {
		mins, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
		}
		span = time.Duration(mins * float64(time.Minute))
	}

	minutes := int(math.Round(span.Seconds() / 60))
	if minutes < 0 {
		return 0, 0, fmt.Errorf("%w: negative duration %q", ErrInvalidDuration, raw)
	}
	return minutes, time.Duration(minutes) * time.Minute, nil
}
