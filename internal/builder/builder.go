// Package builder translates abstract intents (a kind plus named string
// slots) into typed, validated event records.
package builder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"babytrack/internal/model"
	"babytrack/internal/units"
)

// Kind selects the event variant to build.
type Kind string

const (
	KindDiaper  Kind = "diaper"
	KindFormula Kind = "formula"
	KindNursing Kind = "nursing"
)

// Slot names recognized in the intent's slot map.
const (
	SlotBaby       = "Baby"
	SlotDiaperType = "DiaperType"
	SlotAmount     = "Amount"
	SlotUnit       = "Unit"
	SlotDuration   = "Duration"
	SlotSide       = "Side"
)

var (
	ErrUnknownDiaperType  = errors.New("builder: unknown diaper type")
	ErrInvalidAmount      = errors.New("builder: invalid amount")
	ErrUnknownSide        = errors.New("builder: unknown nursing side")
	ErrAmbiguousBaby      = errors.New("builder: ambiguous baby")
	ErrNoBabiesConfigured = errors.New("builder: no babies configured")
	ErrUnknownBaby        = errors.New("builder: unknown baby")
	ErrUnknownKind        = errors.New("builder: unknown event kind")
)

// diaperTable is the fixed lexical mapping from spoken diaper words to the
// service's status codes.
var diaperTable = map[string]model.DiaperStatus{
	"wet":   model.DiaperWet,
	"dirty": model.DiaperDirty,
	"poopy": model.DiaperDirty,
	"mixed": model.DiaperMixed,
	"dry":   model.DiaperDry,
}

// Builder builds events against a fixed roster.
type Builder struct {
	roster model.Roster
}

// New creates a Builder for the configured roster.
func New(roster model.Roster) *Builder {
	return &Builder{roster: roster}
}

// Build constructs one event. Every call assigns a fresh object id and a
// fresh UTC timestamp, so a re-invoked operation after a partial post can
// never masquerade as the same event.
func (b *Builder) Build(kind Kind, slots map[string]string) (model.Event, error) {
	baby, err := b.resolveBaby(slots[SlotBaby])
	if err != nil {
		return nil, err
	}
	head, err := newHeader(baby)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindDiaper:
		return buildDiaper(head, slots)
	case KindFormula:
		return buildFormula(head, slots)
	case KindNursing:
		return buildNursing(head, slots)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// resolveBaby picks the target baby: the Baby slot when present, otherwise
// the sole configured baby.
func (b *Builder) resolveBaby(name string) (model.Baby, error) {
	if name == "" {
		switch len(b.roster) {
		case 0:
			return model.Baby{}, ErrNoBabiesConfigured
		case 1:
			return b.roster[0], nil
		default:
			return model.Baby{}, ErrAmbiguousBaby
		}
	}
	baby, ok := b.roster.Find(name)
	if !ok {
		return model.Baby{}, fmt.Errorf("%w: %q", ErrUnknownBaby, name)
	}
	return baby, nil
}

func newHeader(baby model.Baby) (model.Header, error) {
	id, err := uuid.NewUUID()
	if err != nil {
		return model.Header{}, fmt.Errorf("builder: generating object id: %w", err)
	}
	return model.Header{
		ObjectID:  id.String(),
		Timestamp: time.Now().UTC(),
		Baby:      baby,
	}, nil
}

func buildDiaper(head model.Header, slots map[string]string) (model.Event, error) {
	word := strings.ToLower(strings.TrimSpace(slots[SlotDiaperType]))
	status, ok := diaperTable[word]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDiaperType, slots[SlotDiaperType])
	}
	return model.DiaperEvent{Header: head, Status: status}, nil
}

func buildFormula(head model.Header, slots map[string]string) (model.Event, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(slots[SlotAmount]), 64)
	if err != nil || amount <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, slots[SlotAmount])
	}
	value, unit, err := units.NormalizeVolume(amount, slots[SlotUnit])
	if err != nil {
		return nil, err
	}
	return model.FormulaEvent{Header: head, Amount: value, Unit: unit}, nil
}

func buildNursing(head model.Header, slots map[string]string) (model.Event, error) {
	minutes, span, err := units.NormalizeDuration(slots[SlotDuration])
	if err != nil {
		return nil, err
	}
	side := model.SideBoth
	switch strings.ToLower(strings.TrimSpace(slots[SlotSide])) {
	case "", "both":
		// absent means the whole session counts for both sides
	case "left":
		side = model.SideLeft
	case "right":
		side = model.SideRight
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSide, slots[SlotSide])
	}
	return model.NursingEvent{
		Header:    head,
		Minutes:   minutes,
		Side:      side,
		StartTime: head.Timestamp.Add(-span),
	}, nil
}
