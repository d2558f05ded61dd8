package model

import (
	"time"

	"babytrack/internal/units"
)

// WireTimeLayout is the timestamp format the tracking service expects.
// All event times are UTC.
const WireTimeLayout = "2006-01-02 15:04:05 +0000"

// DiaperStatus is the service's numeric diaper classification.
type DiaperStatus int

const (
	DiaperWet   DiaperStatus = 0
	DiaperDirty DiaperStatus = 1
	DiaperMixed DiaperStatus = 2
	DiaperDry   DiaperStatus = 3
)

// Word returns the spoken form of the status.
func (s DiaperStatus) Word() string {
	switch s {
	case DiaperWet:
		return "wet"
	case DiaperDirty:
		return "dirty"
	case DiaperMixed:
		return "mixed"
	case DiaperDry:
		return "dry"
	}
	return "unknown"
}

// Side identifies which breast a nursing session used. The wire encoding
// uses 0=left, 1=right, 2=both.
type Side int

const (
	SideLeft  Side = 0
	SideRight Side = 1
	SideBoth  Side = 2
)

// Header carries the fields common to every event variant. ObjectID is
// assigned freshly at construction and never reused; Timestamp is UTC.
type Header struct {
	ObjectID  string
	Timestamp time.Time
	Baby      Baby
}

// Event is the sum of the three recordable event variants. It is sealed:
// only DiaperEvent, FormulaEvent, and NursingEvent implement it.
type Event interface {
	Head() Header
}

// DiaperEvent records a diaper change.
type DiaperEvent struct {
	Header
	Status DiaperStatus
}

// FormulaEvent records a formula feeding. Amount is already normalized:
// cups have been expanded to ounces before construction.
type FormulaEvent struct {
	Header
	Amount float64
	Unit   units.Unit
}

// NursingEvent records a nursing session. StartTime is Timestamp minus the
// session duration.
type NursingEvent struct {
	Header
	Minutes   int
	Side      Side
	StartTime time.Time
}

func (h Header) Head() Header { return h }

// ObjectType returns the service's BCObjectType name for an event variant.
func ObjectType(e Event) string {
	switch e.(type) {
	case DiaperEvent:
		return "Diaper"
	case FormulaEvent:
		return "Formula"
	case NursingEvent:
		return "Nursing"
	}
	return ""
}
