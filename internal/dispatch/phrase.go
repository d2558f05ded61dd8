package dispatch

import (
	"fmt"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"babytrack/internal/model"
)

const (
	linkAccountSpeech = "Your account needs to be linked to Baby Tracker. " +
		"Please use the Alexa app on your phone to do this."
	apologySpeech = "Sorry, I wasn't able to record that. Please try again."
)

var titleCaser = cases.Title(language.English)

func linkAccountResponse() Response {
	return Response{Speech: linkAccountSpeech, EndSession: true, LinkAccount: true}
}

func apologyResponse() Response {
	return Response{Speech: apologySpeech, EndSession: true}
}

// confirmation builds the success utterance for each event variant.
func confirmation(e model.Event) string {
	name := titleCaser.String(e.Head().Baby.Name)
	switch ev := e.(type) {
	case model.DiaperEvent:
		return fmt.Sprintf("%s had a %s diaper.", name, ev.Status.Word())
	case model.FormulaEvent:
		amount := strconv.FormatFloat(ev.Amount, 'f', -1, 64)
		return fmt.Sprintf("Recorded a %s %s bottle for %s.", amount, ev.Unit, name)
	case model.NursingEvent:
		return fmt.Sprintf("Recorded %s of nursing for %s.", minutesPhrase(ev.Minutes), name)
	}
	return apologySpeech
}

func minutesPhrase(n int) string {
	if n == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", n)
}
