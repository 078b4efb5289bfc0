// Package storage issues presigned POST grants for browser-direct uploads
// to the audio bucket. The server never proxies the audio bytes; it only
// signs a policy scoped to one object key and one content type.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNotConfigured is returned when no upload bucket is configured.
var ErrNotConfigured = errors.New("storage bucket not configured")

// grantTTL is how long an upload grant stays usable. Expiry is enforced by
// the storage provider, not by this system.
const grantTTL = 600 * time.Second

// UploadGrant is a short-lived credential set for one direct upload.
type UploadGrant struct {
	URL       string            `json:"url"`
	Fields    map[string]string `json:"fields"`
	PublicURL string            `json:"publicUrl"`
}

// postSigner is the slice of the S3 presign client we use.
type postSigner interface {
	PresignPostObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignPostOptions)) (*s3.PresignedPostRequest, error)
}

// Presigner signs upload grants against a single bucket.
type Presigner struct {
	signer postSigner
	bucket string
	region string
}

// New builds a Presigner for the configured bucket. Returns an unconfigured
// Presigner (every SignUpload fails with ErrNotConfigured) when the bucket
// or region is empty.
func New(ctx context.Context, bucket, region string) (*Presigner, error) {
	p := &Presigner{bucket: bucket, region: region}
	if bucket == "" || region == "" {
		return p, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	p.signer = s3.NewPresignClient(s3.NewFromConfig(awsCfg))
	return p, nil
}

// NewWithSigner builds a Presigner around an existing signer. Used by tests.
func NewWithSigner(signer postSigner, bucket, region string) *Presigner {
	return &Presigner{signer: signer, bucket: bucket, region: region}
}

// Configured reports whether the presigner can issue grants.
func (p *Presigner) Configured() bool {
	return p.signer != nil
}

// SignUpload issues a grant for one object key and content type, expiring
// after ten minutes. The grant also carries the deterministic public URL
// the object will have once uploaded.
func (p *Presigner) SignUpload(ctx context.Context, key, contentType string) (UploadGrant, error) {
	if !p.Configured() {
		return UploadGrant{}, ErrNotConfigured
	}

	req, err := p.signer.PresignPostObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(o *s3.PresignPostOptions) {
		o.Expires = grantTTL
		o.Conditions = append(o.Conditions,
			[]interface{}{"eq", "$Content-Type", contentType},
		)
	})
	if err != nil {
		return UploadGrant{}, fmt.Errorf("presigning upload for %q: %w", key, err)
	}

	fields := make(map[string]string, len(req.Values)+1)
	for k, v := range req.Values {
		fields[k] = v
	}
	// The browser must send the declared content type with the form so the
	// policy condition matches.
	if _, ok := fields["Content-Type"]; !ok {
		fields["Content-Type"] = contentType
	}

	return UploadGrant{
		URL:       req.URL,
		Fields:    fields,
		PublicURL: p.PublicURL(key),
	}, nil
}

// PublicURL returns the virtual-hosted-style URL the object will be served
// from after upload.
func (p *Presigner) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, key)
}
