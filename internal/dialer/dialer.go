// Package dialer places outbound calls and lists owned numbers through the
// Twilio REST API.
package dialer

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/promptline/promptline/internal/metrics"
	"github.com/promptline/promptline/internal/phone"
)

var (
	// ErrNotConfigured is returned when Twilio credentials are missing.
	ErrNotConfigured = errors.New("twilio credentials not configured")

	// ErrInvalidFrom is returned when the caller ID fails E.164 validation.
	ErrInvalidFrom = errors.New("invalid from number")

	// ErrNoRecipients is returned when no valid destination numbers remain
	// after validation.
	ErrNoRecipients = errors.New("no valid to numbers")
)

// fromNumbersPageLimit caps the owned-number listing.
const fromNumbersPageLimit = 100

// twilioAPI is the slice of the Twilio REST client the dialer uses.
// Narrowed to an interface so tests can substitute a fake.
type twilioAPI interface {
	CreateCall(params *api.CreateCallParams) (*api.ApiV2010Call, error)
	ListIncomingPhoneNumber(params *api.ListIncomingPhoneNumberParams) ([]api.ApiV2010IncomingPhoneNumber, error)
}

// PlacedCall is one successfully created outbound call.
type PlacedCall struct {
	To  string `json:"to"`
	SID string `json:"sid"`
}

// FailedCall records a destination the provider rejected.
type FailedCall struct {
	To    string `json:"to"`
	Error string `json:"error"`
}

// Result collects per-destination outcomes for one dial request. A provider
// error on one destination does not abort the rest.
type Result struct {
	Calls  []PlacedCall
	Failed []FailedCall
}

// OwnedNumber is an account phone number with its capability flags.
type OwnedNumber struct {
	PhoneNumber  string `json:"phoneNumber"`
	FriendlyName string `json:"friendlyName"`
	Voice        bool   `json:"voice"`
	SMS          bool   `json:"sms"`
	MMS          bool   `json:"mms"`
}

// Dialer issues outbound-call requests through Twilio.
type Dialer struct {
	client      twilioAPI
	defaultFrom string
	configured  bool
}

// New creates a Dialer from account credentials. configured should come from
// the config predicate; an unconfigured Dialer fails every operation with
// ErrNotConfigured instead of sending doomed requests upstream.
func New(accountSID, authToken, defaultFrom string, configured bool) *Dialer {
	var client twilioAPI
	if configured {
		rest := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		})
		client = rest.Api
	}
	return &Dialer{
		client:      client,
		defaultFrom: defaultFrom,
		configured:  configured,
	}
}

// NewWithClient creates a Dialer around an existing API client. Used by tests.
func NewWithClient(client twilioAPI, defaultFrom string) *Dialer {
	return &Dialer{client: client, defaultFrom: defaultFrom, configured: true}
}

// PlaceCalls validates the caller ID and destinations, then creates one
// outbound call per valid destination, in order. Invalid destinations are
// silently dropped. callbackURL is handed to the provider as the voice
// webhook, so answered calls re-enter the inbound menu flow.
func (d *Dialer) PlaceCalls(ctx context.Context, from string, to []string, callbackURL string) (Result, error) {
	if !d.configured {
		return Result{}, ErrNotConfigured
	}

	if from == "" {
		from = d.defaultFrom
	}
	if !phone.ValidNumber(from) {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidFrom, from)
	}

	valid := make([]string, 0, len(to))
	for _, n := range to {
		if phone.ValidNumber(n) {
			valid = append(valid, n)
		}
	}
	if len(valid) == 0 {
		return Result{}, ErrNoRecipients
	}

	var res Result
	for _, dest := range valid {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		params := &api.CreateCallParams{}
		params.SetTo(dest)
		params.SetFrom(from)
		params.SetUrl(callbackURL)
		params.SetMethod("POST")

		call, err := d.client.CreateCall(params)
		if err != nil {
			metrics.OutboundCalls.WithLabelValues("error").Inc()
			res.Failed = append(res.Failed, FailedCall{To: dest, Error: err.Error()})
			continue
		}

		sid := ""
		if call != nil && call.Sid != nil {
			sid = *call.Sid
		}
		metrics.OutboundCalls.WithLabelValues("ok").Inc()
		res.Calls = append(res.Calls, PlacedCall{To: dest, SID: sid})
	}

	return res, nil
}

// FromNumbers lists the account's incoming phone numbers with their
// voice/sms/mms capability flags, up to 100 entries.
func (d *Dialer) FromNumbers(ctx context.Context) ([]OwnedNumber, error) {
	if !d.configured {
		return nil, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := &api.ListIncomingPhoneNumberParams{}
	params.SetLimit(fromNumbersPageLimit)

	nums, err := d.client.ListIncomingPhoneNumber(params)
	if err != nil {
		return nil, fmt.Errorf("listing account numbers: %w", err)
	}

	out := make([]OwnedNumber, 0, len(nums))
	for _, n := range nums {
		owned := OwnedNumber{}
		if n.PhoneNumber != nil {
			owned.PhoneNumber = *n.PhoneNumber
		}
		if n.FriendlyName != nil {
			owned.FriendlyName = *n.FriendlyName
		}
		if n.Capabilities != nil {
			owned.Voice = n.Capabilities.Voice
			owned.SMS = n.Capabilities.Sms
			owned.MMS = n.Capabilities.Mms
		}
		out = append(out, owned)
	}
	return out, nil
}
