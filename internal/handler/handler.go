// Package handler serves requests for presigned upload URLs.
//
// A request is a JSON body of the form
//
//	{"s3Key": "docs/a.pdf", "contentType": "application/pdf", "userId": "u1"}
//
// and a successful response is
//
//	{"uploadUrl": "https://...", "s3Key": "docs/a.pdf", "expiresIn": 300}
package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	logging "github.com/ipfs/go-log/v2"

	"github.com/sainapse/presigned-upload/internal/config"
	"github.com/sainapse/presigned-upload/internal/model"
	"github.com/sainapse/presigned-upload/internal/presign"
	"github.com/sainapse/presigned-upload/internal/telemetry"
)

var log = logging.Logger("handler")

// maxBodyBytes bounds the request body. A valid request is a few hundred bytes.
const maxBodyBytes = 1 << 20

// Options controls how upload URLs are issued.
type Options struct {
	Bucket  string
	Expires time.Duration
	ACL     string

	// ExposeErrorDetails includes the signer's error text in 500 responses.
	ExposeErrorDetails bool

	// Metrics is optional.
	Metrics *telemetry.Metrics

	// ReportError, when set, receives every signing failure.
	ReportError func(error)
}

// Handler issues presigned upload URLs. It holds no per-request state and is
// safe for concurrent use.
type Handler struct {
	signer presign.Signer
	opts   Options
}

// New creates a Handler that signs with signer. Zero-valued Bucket, Expires
// and ACL fall back to the shipped defaults.
func New(signer presign.Signer, opts Options) *Handler {
	if opts.Bucket == "" {
		opts.Bucket = model.DefaultBucket
	}
	if opts.Expires == 0 {
		opts.Expires = model.PresignedURLTTLSeconds * time.Second
	}
	if opts.ACL == "" {
		opts.ACL = model.ACLPrivate
	}
	return &Handler{signer: signer, opts: opts}
}

// NewFromConfig builds the signer selected by cfg and wraps it in a Handler
// that reports signing failures to Sentry.
func NewFromConfig(ctx context.Context, cfg config.Config, metrics *telemetry.Metrics) (*Handler, error) {
	signer, err := presign.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("constructing signer: %w", err)
	}
	return New(signer, Options{
		Bucket:             cfg.Bucket,
		Expires:            cfg.Expires,
		ACL:                cfg.ACL,
		ExposeErrorDetails: cfg.ExposeErrorDetails,
		Metrics:            metrics,
		ReportError:        telemetry.ReportError,
	}), nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setResponseHeaders(w.Header())

	if r.Method == http.MethodOptions {
		h.observe(telemetry.OutcomePreflight)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	logger := log.With("method", r.Method, "path", r.URL.Path)
	if lc, ok := lambdacontext.FromContext(r.Context()); ok {
		logger = logger.With("requestId", lc.AwsRequestID)
	}

	req, err := decodeRequest(w, r)
	if err != nil {
		logger.Warnw("rejecting malformed body", "err", err)
		h.observe(telemetry.OutcomeInvalid)
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.MsgMissingParameters,
			Details: err.Error(),
		})
		return
	}
	logger = logger.With("s3Key", req.S3Key, "contentType", req.ContentType, "userId", req.UserID)

	if err := req.Validate(); err != nil {
		logger.Infow("rejecting request", "err", err)
		h.observe(telemetry.OutcomeInvalid)
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: model.MsgMissingParameters})
		return
	}

	signReq := presign.SignRequest{
		Bucket:      h.opts.Bucket,
		Key:         req.S3Key,
		ContentType: req.ContentType,
		Expires:     h.opts.Expires,
		ACL:         h.opts.ACL,
	}
	logger.Infow("generating presigned URL", "bucket", signReq.Bucket, "expires", signReq.Expires, "acl", signReq.ACL)

	start := time.Now()
	uploadURL, err := h.signer.SignPut(r.Context(), signReq)
	if h.opts.Metrics != nil {
		h.opts.Metrics.ObserveSigning(time.Since(start))
	}
	if err != nil {
		logger.Errorw("generating presigned URL", "err", err)
		h.observe(telemetry.OutcomeFailed)
		if h.opts.ReportError != nil {
			h.opts.ReportError(err)
		}
		resp := model.ErrorResponse{Error: model.MsgSigningFailed}
		if h.opts.ExposeErrorDetails {
			resp.Details = providerMessage(err)
		}
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	logger.Infow("generated presigned URL")
	h.observe(telemetry.OutcomeIssued)
	writeJSON(w, http.StatusOK, model.UploadResponse{
		UploadURL: uploadURL,
		S3Key:     req.S3Key,
		ExpiresIn: int(h.opts.Expires / time.Second),
	})
}

// decodeRequest reads the JSON body into an UploadRequest. An empty body
// decodes to the zero request so it fails validation like absent fields do.
func decodeRequest(w http.ResponseWriter, r *http.Request) (model.UploadRequest, error) {
	var req model.UploadRequest
	if r.Body == nil {
		return req, nil
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, fmt.Errorf("body exceeds %d bytes", tooLarge.Limit)
		}
		return req, fmt.Errorf("reading body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return model.UploadRequest{}, err
	}
	return req, nil
}

// providerMessage returns the storage provider's own error text, without the
// signer's context prefix.
func providerMessage(err error) string {
	var signErr *presign.SignError
	if errors.As(err, &signErr) && signErr.Err != nil {
		return signErr.Err.Error()
	}
	return err.Error()
}

// MethodNotAllowed answers methods other than POST and OPTIONS, carrying the
// same headers as every other response.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	setResponseHeaders(w.Header())
	writeJSON(w, http.StatusMethodNotAllowed, model.ErrorResponse{
		Error: http.StatusText(http.StatusMethodNotAllowed),
	})
}

func (h *Handler) observe(outcome string) {
	if h.opts.Metrics != nil {
		h.opts.Metrics.ObserveRequest(outcome)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
