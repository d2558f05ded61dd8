package model

import (
	"encoding/json"
	"fmt"
	"time"

	"babytrack/internal/units"
)

// Wire types for the tracking service's transaction payload. The field set
// and spellings (including "newFlage") are fixed by the service; do not
// rename.

type wireCommon struct {
	BCObjectType  string   `json:"BCObjectType"`
	ObjectID      string   `json:"objectID"`
	Timestamp     string   `json:"timestamp"`
	Time          string   `json:"time"`
	Baby          Baby     `json:"baby"`
	Note          string   `json:"note"`
	PictureLoaded string   `json:"pictureLoaded"`
	PictureNote   []string `json:"pictureNote"`
	NewFlage      string   `json:"newFlage"`
}

type wireDiaper struct {
	wireCommon
	// The official apps send 5s for colors/texture and 2 for amount;
	// nothing appears to consume them.
	PooColor int `json:"pooColor"`
	PeeColor int `json:"peeColor"`
	Texture  int `json:"texture"`
	Amount   int `json:"amount"`
	Flag     int `json:"flag"`
	Status   int `json:"status"`
}

type wireAmount struct {
	Value          float64 `json:"value"`
	EnglishMeasure string  `json:"englishMeasure"`
}

type wireFormula struct {
	wireCommon
	Amount wireAmount `json:"amount"`
}

type wireNursing struct {
	wireCommon
	LeftDuration  int `json:"leftDuration"`
	RightDuration int `json:"rightDuration"`
	BothDuration  int `json:"bothDuration"`
	FinishSide    int `json:"finishSide"`
}

// EncodeWire serializes an event into the service's JSON document. All
// three variants are encoded here so any wire-format drift stays visible
// in one place. An event is encoded exactly once, immediately before post.
func EncodeWire(e Event) ([]byte, error) {
	switch ev := e.(type) {
	case DiaperEvent:
		return json.Marshal(wireDiaper{
			wireCommon: commonFields(ev.Header, "Diaper", ev.Timestamp),
			PooColor:   5,
			PeeColor:   5,
			Texture:    5,
			Amount:     2,
			Flag:       0,
			Status:     int(ev.Status),
		})
	case FormulaEvent:
		english := "false"
		if ev.Unit == units.Ounce {
			english = "true"
		}
		return json.Marshal(wireFormula{
			wireCommon: commonFields(ev.Header, "Formula", ev.Timestamp),
			Amount:     wireAmount{Value: ev.Amount, EnglishMeasure: english},
		})
	case NursingEvent:
		w := wireNursing{
			wireCommon: commonFields(ev.Header, "Nursing", ev.StartTime),
			FinishSide: int(ev.Side),
		}
		switch ev.Side {
		case SideLeft:
			w.LeftDuration = ev.Minutes
		case SideRight:
			w.RightDuration = ev.Minutes
		default:
			w.BothDuration = ev.Minutes
		}
		return json.Marshal(w)
	default:
		return nil, fmt.Errorf("model: unsupported event type %T", e)
	}
}

// commonFields builds the shared wire fields. start is the event's "time"
// field: the moment the activity happened (for nursing, session start).
func commonFields(h Header, objectType string, start time.Time) wireCommon {
	baby := h.Baby
	if baby.BCObjectType == "" {
		baby.BCObjectType = "Baby"
	}
	return wireCommon{
		BCObjectType:  objectType,
		ObjectID:      h.ObjectID,
		Timestamp:     h.Timestamp.UTC().Format(WireTimeLayout),
		Time:          start.UTC().Format(WireTimeLayout),
		Baby:          baby,
		Note:          "",
		PictureLoaded: "true",
		PictureNote:   []string{},
		NewFlage:      "true",
	}
}
