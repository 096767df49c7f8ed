package presign

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSSigner presigns V4 PUT URLs for Google Cloud Storage.
type GCSSigner struct {
	client *storage.Client

	// googleAccessID and privateKey sign locally when set. Otherwise the
	// client detects them from its credentials, falling back to the IAM
	// signBlob API.
	googleAccessID string
	privateKey     []byte

	clientOpts []option.ClientOption
}

// GCSOption configures a GCSSigner.
type GCSOption func(*GCSSigner)

// WithServiceAccountKey signs with an explicit service account email and PEM
// encoded private key.
func WithServiceAccountKey(googleAccessID string, privateKey []byte) GCSOption {
	return func(s *GCSSigner) {
		s.googleAccessID = googleAccessID
		s.privateKey = privateKey
	}
}

// WithClientOptions passes opts through to the underlying GCS client,
// allowing credential injection.
func WithClientOptions(opts ...option.ClientOption) GCSOption {
	return func(s *GCSSigner) {
		s.clientOpts = append(s.clientOpts, opts...)
	}
}

// NewGCSSigner creates a GCSSigner with a new storage client.
func NewGCSSigner(ctx context.Context, opts ...GCSOption) (*GCSSigner, error) {
	s := &GCSSigner{}
	for _, opt := range opts {
		opt(s)
	}

	client, err := storage.NewClient(ctx, s.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("presign: failed to create GCS client: %w", err)
	}
	s.client = client
	return s, nil
}

// Close releases the underlying client.
func (s *GCSSigner) Close() error {
	return s.client.Close()
}

// SignPut implements Signer.
func (s *GCSSigner) SignPut(_ context.Context, req SignRequest) (string, error) {
	opts := &storage.SignedURLOptions{
		GoogleAccessID: s.googleAccessID,
		PrivateKey:     s.privateKey,
		Method:         http.MethodPut,
		ContentType:    req.ContentType,
		Expires:        time.Now().Add(req.Expires),
		Scheme:         storage.SigningSchemeV4,
	}
	if req.ACL != "" {
		opts.Headers = []string{"x-goog-acl:" + req.ACL}
	}

	signedURL, err := s.client.Bucket(req.Bucket).SignedURL(req.Key, opts)
	if err != nil {
		return "", &SignError{Provider: "gcs", Key: req.Key, Err: err}
	}
	return signedURL, nil
}

var _ Signer = (*GCSSigner)(nil)
