// Package ivr builds the TwiML voice-response documents for the inbound
// call flow: a one-digit DTMF menu and the per-keypress playback.
package ivr

import (
	"github.com/twilio/twilio-go/twiml"

	"github.com/promptline/promptline/internal/audio"
)

// Gather parameters for the menu. A single 10s timeout ends the
// interaction; there is no retry and no loop back to the menu.
const (
	gatherDigits  = "1"
	gatherTimeout = "10"
)

const (
	noInputMessage    = "We did not receive any input. Goodbye."
	invalidKeyMessage = "Invalid key press. Goodbye."
)

// Responder renders voice-response documents against the current audio set.
type Responder struct {
	audio *audio.Set
}

// NewResponder creates a Responder reading prompts from the given set.
func NewResponder(set *audio.Set) *Responder {
	return &Responder{audio: set}
}

// Menu returns the entry document: a Gather collecting exactly one DTMF
// digit with the menu prompt playing inside it (interruptible), posting to
// baseURL/gather even when no digit arrives. Control falls through to the
// no-input message only if the Gather times out.
func (r *Responder) Menu(baseURL string) (string, error) {
	gather := &twiml.VoiceGather{
		Input:               "dtmf",
		NumDigits:           gatherDigits,
		Timeout:             gatherTimeout,
		Action:              baseURL + "/gather",
		Method:              "POST",
		ActionOnEmptyResult: "true",
		InnerElements: []twiml.Element{
			&twiml.VoicePlay{Url: r.audio.Get(audio.KindMenu)},
		},
	}

	return twiml.Voice([]twiml.Element{
		gather,
		&twiml.VoiceSay{Message: noInputMessage},
	})
}

// Keypress returns the document played after a digit (or no digit) was
// collected. Total over digit: "1" plays the opt1 prompt, "3" plays the
// opt3 prompt, anything else gets the invalid-key message and the call ends.
func (r *Responder) Keypress(digit string) (string, error) {
	var verb twiml.Element
	switch digit {
	case "1":
		verb = &twiml.VoicePlay{Url: r.audio.Get(audio.KindOpt1)}
	case "3":
		verb = &twiml.VoicePlay{Url: r.audio.Get(audio.KindOpt3)}
	default:
		verb = &twiml.VoiceSay{Message: invalidKeyMessage}
	}

	return twiml.Voice([]twiml.Element{verb})
}
