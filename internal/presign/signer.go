// Package presign mints time-limited URLs that authorize a single PUT of an
// object into a bucket. The S3 implementation is the production backend; GCS
// is supported for deployments outside AWS, and the interface lets tests
// substitute a fake.
package presign

import (
	"context"
	"fmt"
	"time"

	"github.com/sainapse/presigned-upload/internal/config"
)

// Signer produces presigned upload URLs.
type Signer interface {
	// SignPut returns a URL that accepts a PUT of req.Key into req.Bucket
	// until req.Expires has elapsed. The uploader must send the same
	// Content-Type, and the ACL header when one was signed.
	SignPut(ctx context.Context, req SignRequest) (string, error)
}

// SignRequest describes the upload being authorized.
type SignRequest struct {
	Bucket      string
	Key         string
	ContentType string
	Expires     time.Duration
	// ACL is the canned access policy applied to the stored object, e.g.
	// "private". Empty leaves the bucket default in place.
	ACL string
}

// SignError reports a failed signing call. Err is the provider's error,
// unchanged.
type SignError struct {
	Provider string
	Key      string
	Err      error
}

func (e *SignError) Error() string {
	return fmt.Sprintf("presign: signing %s put for %q: %v", e.Provider, e.Key, e.Err)
}

func (e *SignError) Unwrap() error {
	return e.Err
}

// New builds the Signer selected by cfg.Provider.
func New(ctx context.Context, cfg config.Config) (Signer, error) {
	switch cfg.Provider {
	case config.ProviderS3:
		awsCfg, err := cfg.AWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		return NewS3Signer(awsCfg, WithEndpoint(cfg.Endpoint, cfg.UsePathStyle)), nil
	case config.ProviderGCS:
		return NewGCSSigner(ctx)
	default:
		return nil, fmt.Errorf("presign: unknown provider %q", cfg.Provider)
	}
}
