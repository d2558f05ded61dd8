// Package dispatch routes abstract intents to the event builder and sync
// client and translates every outcome into a spoken response. Nothing in
// this package returns an error: each failure path ends in a well-formed
// response.
package dispatch

import (
	"context"
	"errors"
	"log/slog"

	"babytrack/internal/builder"
	"babytrack/internal/credential"
	"babytrack/internal/model"
	"babytrack/internal/tracker"
)

// ErrUnsupportedIntent is logged (never spoken) for intent names outside
// the table.
var ErrUnsupportedIntent = errors.New("dispatch: unsupported intent")

// Response is the outcome handed back to the voice front-end.
type Response struct {
	Speech      string
	EndSession  bool
	LinkAccount bool
}

// Recorder posts one built event to the tracking service.
type Recorder interface {
	Record(ctx context.Context, event model.Event, creds credential.Credentials) (tracker.Receipt, error)
}

// intentSpec maps an intent name to an event kind, with an optional
// implicit diaper type that an explicit DiaperType slot overrides.
type intentSpec struct {
	kind          builder.Kind
	defaultDiaper string
}

var intentTable = map[string]intentSpec{
	"Diaper":             {kind: builder.KindDiaper},
	"RecordDiaperIntent": {kind: builder.KindDiaper},
	"Pee":                {kind: builder.KindDiaper, defaultDiaper: "wet"},
	"Poo":                {kind: builder.KindDiaper, defaultDiaper: "dirty"},
	"Mixed":              {kind: builder.KindDiaper, defaultDiaper: "mixed"},
	"Formula":            {kind: builder.KindFormula},
	"Nursing":            {kind: builder.KindNursing},
}

// Dispatcher wires the builder and recorder behind the intent table.
type Dispatcher struct {
	builder  *builder.Builder
	recorder Recorder
}

// New creates a Dispatcher.
func New(b *builder.Builder, r Recorder) *Dispatcher {
	return &Dispatcher{builder: b, recorder: r}
}

// Dispatch records one event for one intent. creds resolves the caller's
// credentials for this single operation; when it reports the account is
// not linked, the recorder is never invoked and the caller gets the
// link-account response.
func (d *Dispatcher) Dispatch(ctx context.Context, intentName string, slots map[string]string, creds credential.Resolver) Response {
	spec, ok := intentTable[intentName]
	if !ok {
		slog.Warn("dispatch failed", "intent", intentName, "error", ErrUnsupportedIntent)
		return apologyResponse()
	}

	resolved, err := creds.Resolve()
	if err != nil {
		if errors.Is(err, credential.ErrAccountNotLinked) {
			slog.Info("account not linked", "intent", intentName, "cause", err)
			return linkAccountResponse()
		}
		slog.Warn("credential resolution failed", "intent", intentName, "error", err)
		return apologyResponse()
	}

	event, err := d.builder.Build(spec.kind, mergeDefaults(slots, spec))
	if err != nil {
		slog.Warn("building event failed", "intent", intentName, "error", err)
		return apologyResponse()
	}

	receipt, err := d.recorder.Record(ctx, event, resolved)
	if err != nil {
		slog.Warn("recording event failed", "intent", intentName,
			"object_id", event.Head().ObjectID, "error", err)
		return apologyResponse()
	}

	slog.Info("event recorded", "intent", intentName,
		"object_id", event.Head().ObjectID, "sync_id", receipt.SyncID)
	return Response{Speech: confirmation(event), EndSession: true}
}

// mergeDefaults returns the slot map with the intent's implicit diaper
// type filled in when the caller gave none. The input map is not mutated.
func mergeDefaults(slots map[string]string, spec intentSpec) map[string]string {
	if spec.defaultDiaper == "" || slots[builder.SlotDiaperType] != "" {
		return slots
	}
	merged := make(map[string]string, len(slots)+1)
	for k, v := range slots {
		merged[k] = v
	}
	merged[builder.SlotDiaperType] = spec.defaultDiaper
	return merged
}
