package dialer

import (
	"context"
	"errors"
	"testing"

	api "github.com/twilio/twilio-go/rest/api/v2010"
)

func strptr(s string) *string { return &s }

// fakeAPI records CreateCall invocations and fails destinations listed in
// failTo.
type fakeAPI struct {
	created []api.CreateCallParams
	failTo  map[string]error
	numbers []api.ApiV2010IncomingPhoneNumber
	listErr error
}

func (f *fakeAPI) CreateCall(params *api.CreateCallParams) (*api.ApiV2010Call, error) {
	f.created = append(f.created, *params)
	if err, ok := f.failTo[*params.To]; ok {
		return nil, err
	}
	sid := "CA" + *params.To
	return &api.ApiV2010Call{Sid: &sid}, nil
}

func (f *fakeAPI) ListIncomingPhoneNumber(params *api.ListIncomingPhoneNumberParams) ([]api.ApiV2010IncomingPhoneNumber, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.numbers, nil
}

func TestPlaceCallsNotConfigured(t *testing.T) {
	d := New("", "", "", false)
	_, err := d.PlaceCalls(context.Background(), "+14155550123", []string{"+19998887777"}, "https://x/voice")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
}

func TestPlaceCallsInvalidFrom(t *testing.T) {
	fake := &fakeAPI{}
	d := NewWithClient(fake, "")

	_, err := d.PlaceCalls(context.Background(), "not-a-number", []string{"+19998887777"}, "https://x/voice")
	if !errors.Is(err, ErrInvalidFrom) {
		t.Fatalf("error = %v, want ErrInvalidFrom", err)
	}
	if len(fake.created) != 0 {
		t.Errorf("provider was called %d times, want 0", len(fake.created))
	}
}

func TestPlaceCallsFallsBackToDefaultFrom(t *testing.T) {
	fake := &fakeAPI{}
	d := NewWithClient(fake, "+14155550123")

	res, err := d.PlaceCalls(context.Background(), "", []string{"+19998887777"}, "https://x/voice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(res.Calls))
	}
	if got := *fake.created[0].From; got != "+14155550123" {
		t.Errorf("from = %q, want default", got)
	}
}

func TestPlaceCallsDropsInvalidDestinations(t *testing.T) {
	fake := &fakeAPI{}
	d := NewWithClient(fake, "")

	to := []string{"+19998887777", "garbage", "+12345", "+14442221111"}
	res, err := d.PlaceCalls(context.Background(), "+14155550123", to, "https://x/voice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(res.Calls))
	}
	if res.Calls[0].To != "+19998887777" || res.Calls[1].To != "+14442221111" {
		t.Errorf("calls = %+v, want valid subset in order", res.Calls)
	}
	if len(fake.created) != 2 {
		t.Errorf("provider called %d times, want 2", len(fake.created))
	}
}

func TestPlaceCallsNoValidDestinations(t *testing.T) {
	fake := &fakeAPI{}
	d := NewWithClient(fake, "")

	_, err := d.PlaceCalls(context.Background(), "+14155550123", []string{"nope", "+12"}, "https://x/voice")
	if !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("error = %v, want ErrNoRecipients", err)
	}
	if len(fake.created) != 0 {
		t.Errorf("provider was called %d times, want 0", len(fake.created))
	}
}

func TestPlaceCallsPartialFailure(t *testing.T) {
	fake := &fakeAPI{failTo: map[string]error{"+19998887777": errors.New("upstream rejected")}}
	d := NewWithClient(fake, "")

	to := []string{"+19998887777", "+14442221111"}
	res, err := d.PlaceCalls(context.Background(), "+14155550123", to, "https://x/voice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A provider error on one destination must not abort the rest.
	if len(res.Calls) != 1 || res.Calls[0].To != "+14442221111" {
		t.Errorf("calls = %+v", res.Calls)
	}
	if len(res.Failed) != 1 || res.Failed[0].To != "+19998887777" {
		t.Errorf("failed = %+v", res.Failed)
	}
}

func TestPlaceCallsSetsCallbackURL(t *testing.T) {
	fake := &fakeAPI{}
	d := NewWithClient(fake, "")

	_, err := d.PlaceCalls(context.Background(), "+14155550123", []string{"+19998887777"}, "https://ivr.example.com/voice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := *fake.created[0].Url; got != "https://ivr.example.com/voice" {
		t.Errorf("url = %q", got)
	}
}

func TestFromNumbers(t *testing.T) {
	fake := &fakeAPI{
		numbers: []api.ApiV2010IncomingPhoneNumber{
			{
				PhoneNumber:  strptr("+14155550123"),
				FriendlyName: strptr("Main line"),
				Capabilities: &api.ApiV2010AccountIncomingPhoneNumberCapabilities{
					Voice: true,
					Sms:   true,
					Mms:   false,
				},
			},
			{PhoneNumber: strptr("+14155550124")},
		},
	}
	d := NewWithClient(fake, "")

	nums, err := d.FromNumbers(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nums) != 2 {
		t.Fatalf("numbers = %d, want 2", len(nums))
	}
	if nums[0].PhoneNumber != "+14155550123" || !nums[0].Voice || !nums[0].SMS || nums[0].MMS {
		t.Errorf("nums[0] = %+v", nums[0])
	}
	if nums[1].PhoneNumber != "+14155550124" || nums[1].Voice {
		t.Errorf("nums[1] = %+v", nums[1])
	}
}

func TestFromNumbersNotConfigured(t *testing.T) {
	d := New("", "", "", false)
	if _, err := d.FromNumbers(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
}
