package model

import "errors"

// Domain constants shared across handler, config, and presign packages.
const (
	PresignedURLTTLSeconds = 300 // 5 minutes
	DefaultBucket          = "sainapse-documents"
	DefaultRegion          = "ap-southeast-1"
	ACLPrivate             = "private"
)

// Error messages returned in ErrorResponse.Error.
const (
	MsgMissingParameters = "Missing required parameters: s3Key, contentType, userId"
	MsgSigningFailed     = "Failed to generate presigned URL"
)

// ErrMissingParameters is returned by UploadRequest.Validate when any
// required field is empty.
var ErrMissingParameters = errors.New(MsgMissingParameters)
