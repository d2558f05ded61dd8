package babytrack

import (
	"context"
	"fmt"
	"strconv"

	"babytrack/internal/builder"
	"babytrack/internal/credential"
	"babytrack/internal/model"
	"babytrack/internal/tracker"
)

// Baby identifies one child to record events for. Name is required; the
// remaining fields are forwarded to the service inside each event.
type Baby struct {
	Name   string
	DOB    string
	Gender string
}

// Receipt reports a successfully posted event.
type Receipt struct {
	// ObjectID is the event's identifier, shared with the service.
	ObjectID string
	// SyncID is the transaction's position in the account's sync stream.
	SyncID int64
}

// Client records events against one account. Safe for concurrent use.
type Client struct {
	builder *builder.Builder
	tracker *tracker.Client
	creds   credential.Resolver
}

// New creates a Client. Credentials and at least one baby are required.
func New(opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.email == "" || o.password == "" {
		return nil, fmt.Errorf("babytrack: credentials are required")
	}
	if len(o.babies) == 0 {
		return nil, fmt.Errorf("babytrack: at least one baby is required")
	}

	roster := make(model.Roster, len(o.babies))
	for i, b := range o.babies {
		roster[i] = model.Baby{Name: b.Name, DOB: b.DOB, Gender: b.Gender}
	}

	return &Client{
		builder: builder.New(roster),
		tracker: tracker.New(o.baseURL, tracker.WithTimeout(o.timeout)),
		creds: credential.StaticResolver{
			Email:    o.email,
			Password: o.password,
			DeviceID: o.deviceID,
		},
	}, nil
}

// RecordDiaper records a diaper change. diaperType is one of "wet",
// "dirty", "poopy", "mixed", or "dry".
func (c *Client) RecordDiaper(ctx context.Context, baby, diaperType string) (Receipt, error) {
	return c.record(ctx, builder.KindDiaper, map[string]string{
		builder.SlotBaby:       baby,
		builder.SlotDiaperType: diaperType,
	})
}

// RecordFormula records a formula bottle. unit is a spoken volume unit
// such as "ounces", "milliliters", or "cups".
func (c *Client) RecordFormula(ctx context.Context, baby string, amount float64, unit string) (Receipt, error) {
	return c.record(ctx, builder.KindFormula, map[string]string{
		builder.SlotBaby:   baby,
		builder.SlotAmount: strconv.FormatFloat(amount, 'f', -1, 64),
		builder.SlotUnit:   unit,
	})
}

// RecordNursing records a nursing session. duration is either an ISO-8601
// duration ("PT15M") or plain minutes ("15"); side is "left", "right", or
// "both" (empty means both).
func (c *Client) RecordNursing(ctx context.Context, baby, duration, side string) (Receipt, error) {
	slots := map[string]string{
		builder.SlotBaby:     baby,
		builder.SlotDuration: duration,
	}
	if side != "" {
		slots[builder.SlotSide] = side
	}
	return c.record(ctx, builder.KindNursing, slots)
}

func (c *Client) record(ctx context.Context, kind builder.Kind, slots map[string]string) (Receipt, error) {
	event, err := c.builder.Build(kind, slots)
	if err != nil {
		return Receipt{}, fmt.Errorf("babytrack: %w", err)
	}
	resolved, err := c.creds.Resolve()
	if err != nil {
		return Receipt{}, fmt.Errorf("babytrack: %w", err)
	}
	receipt, err := c.tracker.Record(ctx, event, resolved)
	if err != nil {
		return Receipt{}, fmt.Errorf("babytrack: %w", err)
	}
	return Receipt{ObjectID: event.Head().ObjectID, SyncID: receipt.SyncID}, nil
}
