package model

import (
	"encoding/json"
	"fmt"
)

// UploadRequest is the JSON body sent by clients to request an upload URL.
type UploadRequest struct {
	S3Key       string `json:"s3Key"`
	ContentType string `json:"contentType"`
	UserID      string `json:"userId"`
}

// UnmarshalJSON matches keys by exact name; "S3KEY" does not set S3Key. When
// a key repeats, the last value wins. A null value counts as absent.
func (r *UploadRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = UploadRequest{}
	for key, dst := range map[string]*string{
		"s3Key":       &r.S3Key,
		"contentType": &r.ContentType,
		"userId":      &r.UserID,
	} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}
	return nil
}

// Validate reports ErrMissingParameters if any field is empty.
func (r UploadRequest) Validate() error {
	if r.S3Key == "" || r.ContentType == "" || r.UserID == "" {
		return ErrMissingParameters
	}
	return nil
}
