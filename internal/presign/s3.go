package presign

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Signer presigns PutObject requests with the AWS SDK. Signing is local:
// credentials are resolved from the config but no request is sent to S3.
type S3Signer struct {
	presignClient *s3.PresignClient
}

// WithEndpoint points the client at an S3-compatible endpoint such as MinIO
// or LocalStack. An empty endpoint keeps the regional AWS endpoint.
func WithEndpoint(endpoint string, usePathStyle bool) func(*s3.Options) {
	return func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = usePathStyle
	}
}

// NewS3Signer creates an S3Signer from an AWS config. optFns are applied to
// the underlying S3 client.
func NewS3Signer(cfg aws.Config, optFns ...func(*s3.Options)) *S3Signer {
	client := s3.NewFromConfig(cfg, optFns...)
	return &S3Signer{presignClient: s3.NewPresignClient(client)}
}

// SignPut implements Signer.
func (s *S3Signer) SignPut(ctx context.Context, req SignRequest) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(req.Bucket),
		Key:         aws.String(req.Key),
		ContentType: aws.String(req.ContentType),
	}
	if req.ACL != "" {
		input.ACL = types.ObjectCannedACL(req.ACL)
	}

	signed, err := s.presignClient.PresignPutObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = req.Expires
	})
	if err != nil {
		return "", &SignError{Provider: "s3", Key: req.Key, Err: err}
	}
	return signed.URL, nil
}

var _ Signer = (*S3Signer)(nil)
