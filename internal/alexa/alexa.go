// Package alexa adapts the voice front-end's request/response envelope
// onto the intent dispatcher.
package alexa

import (
	"context"
	"fmt"

	"babytrack/internal/credential"
	"babytrack/internal/dispatch"
)

// Request envelope, trimmed to the fields this skill reads.

type RequestEnvelope struct {
	Version string  `json:"version"`
	Session Session `json:"session"`
	Request Request `json:"request"`
}

type Session struct {
	Application Application `json:"application"`
	User        User        `json:"user"`
}

type Application struct {
	ApplicationID string `json:"applicationId"`
}

type User struct {
	AccessToken string `json:"accessToken"`
}

type Request struct {
	Type   string `json:"type"` // LaunchRequest, IntentRequest, SessionEndedRequest
	Intent Intent `json:"intent"`
}

type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots"`
}

type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Response envelope.

type ResponseEnvelope struct {
	Version  string   `json:"version"`
	Response Response `json:"response"`
}

type Response struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Card             *Card         `json:"card,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Card struct {
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}

const (
	cardTitle     = "Baby Tracker"
	welcomeSpeech = "Baby Tracker is ready. You can say things like: record a wet diaper."
)

// ResolverFunc builds a credential resolver for one request's access
// token (empty when the account is not linked).
type ResolverFunc func(accessToken string) credential.Resolver

// Handler verifies and routes envelopes. AppID empty disables application
// verification.
type Handler struct {
	AppID      string
	Dispatcher *dispatch.Dispatcher
	Resolver   ResolverFunc
}

// Handle processes one envelope. A mismatched application id is the one
// condition that errors instead of producing speech: it means the caller
// is not our skill at all.
func (h *Handler) Handle(ctx context.Context, env RequestEnvelope) (ResponseEnvelope, error) {
	if h.AppID != "" && env.Session.Application.ApplicationID != h.AppID {
		return ResponseEnvelope{}, fmt.Errorf("alexa: invalid application id %q", env.Session.Application.ApplicationID)
	}

	switch env.Request.Type {
	case "LaunchRequest":
		return speak(welcomeSpeech, false), nil
	case "IntentRequest":
		resp := h.Dispatcher.Dispatch(ctx, env.Request.Intent.Name,
			slotValues(env.Request.Intent.Slots),
			h.Resolver(env.Session.User.AccessToken))
		return envelope(resp), nil
	case "SessionEndedRequest":
		return ResponseEnvelope{Version: "1.0", Response: Response{ShouldEndSession: true}}, nil
	default:
		return ResponseEnvelope{}, fmt.Errorf("alexa: unsupported request type %q", env.Request.Type)
	}
}

// slotValues flattens the envelope's slot structure into the dispatcher's
// name → raw value map, dropping empty values.
func slotValues(slots map[string]Slot) map[string]string {
	if len(slots) == 0 {
		return nil
	}
	m := make(map[string]string, len(slots))
	for name, slot := range slots {
		if slot.Value != "" {
			m[name] = slot.Value
		}
	}
	return m
}

func envelope(r dispatch.Response) ResponseEnvelope {
	if r.LinkAccount {
		return ResponseEnvelope{
			Version: "1.0",
			Response: Response{
				OutputSpeech:     &OutputSpeech{Type: "PlainText", Text: r.Speech},
				Card:             &Card{Type: "LinkAccount"},
				ShouldEndSession: true,
			},
		}
	}
	out := speak(r.Speech, r.EndSession)
	out.Response.Card = &Card{Type: "Simple", Title: cardTitle, Content: r.Speech}
	return out
}

func speak(text string, endSession bool) ResponseEnvelope {
	return ResponseEnvelope{
		Version: "1.0",
		Response: Response{
			OutputSpeech:     &OutputSpeech{Type: "PlainText", Text: text},
			ShouldEndSession: endSession,
		},
	}
}
