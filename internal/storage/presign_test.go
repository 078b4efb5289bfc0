package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fakeSigner captures the presign input without calling AWS.
type fakeSigner struct {
	gotInput   *s3.PutObjectInput
	gotOptions s3.PresignPostOptions
	err        error
}

func (f *fakeSigner) PresignPostObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignPostOptions)) (*s3.PresignedPostRequest, error) {
	f.gotInput = params
	for _, fn := range optFns {
		fn(&f.gotOptions)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PresignedPostRequest{
		URL: "https://prompts-bucket.s3.us-east-1.amazonaws.com",
		Values: map[string]string{
			"key":              *params.Key,
			"policy":           "signed-policy",
			"x-amz-signature":  "sig",
			"x-amz-credential": "cred",
		},
	}, nil
}

func TestSignUploadNotConfigured(t *testing.T) {
	p, err := New(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Configured() {
		t.Fatal("Configured() = true without bucket")
	}
	_, err = p.SignUpload(context.Background(), "menu.mp3", "audio/mpeg")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
}

func TestSignUploadScopesKeyAndContentType(t *testing.T) {
	fake := &fakeSigner{}
	p := NewWithSigner(fake, "prompts-bucket", "us-east-1")

	grant, err := p.SignUpload(context.Background(), "audio/menu.mp3", "audio/mpeg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *fake.gotInput.Bucket != "prompts-bucket" {
		t.Errorf("bucket = %q", *fake.gotInput.Bucket)
	}
	if *fake.gotInput.Key != "audio/menu.mp3" {
		t.Errorf("key = %q", *fake.gotInput.Key)
	}
	if *fake.gotInput.ContentType != "audio/mpeg" {
		t.Errorf("content type = %q", *fake.gotInput.ContentType)
	}
	if fake.gotOptions.Expires != 600*time.Second {
		t.Errorf("expires = %v, want 600s", fake.gotOptions.Expires)
	}
	if len(fake.gotOptions.Conditions) == 0 {
		t.Error("no content-type condition attached")
	}

	if grant.URL == "" {
		t.Error("grant URL empty")
	}
	if grant.Fields["Content-Type"] != "audio/mpeg" {
		t.Errorf("fields missing Content-Type: %v", grant.Fields)
	}
	if grant.Fields["policy"] != "signed-policy" {
		t.Errorf("signed fields not passed through: %v", grant.Fields)
	}
	if want := "https://prompts-bucket.s3.us-east-1.amazonaws.com/audio/menu.mp3"; grant.PublicURL != want {
		t.Errorf("public url = %q, want %q", grant.PublicURL, want)
	}
}

func TestSignUploadPropagatesError(t *testing.T) {
	fake := &fakeSigner{err: errors.New("aws down")}
	p := NewWithSigner(fake, "prompts-bucket", "us-east-1")

	if _, err := p.SignUpload(context.Background(), "k", "audio/mpeg"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
