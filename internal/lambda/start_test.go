package lambda_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/require"

	"github.com/sainapse/presigned-upload/internal/handler"
	"github.com/sainapse/presigned-upload/internal/lambda"
	"github.com/sainapse/presigned-upload/internal/model"
	"github.com/sainapse/presigned-upload/internal/presign"
)

type stubSigner struct {
	url string
	err error
}

func (s stubSigner) SignPut(context.Context, presign.SignRequest) (string, error) {
	return s.url, s.err
}

func invoke(t *testing.T, signer presign.Signer, event events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	t.Helper()
	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-1"})

	resp, err := lambda.Proxy(handler.New(signer, handler.Options{ExposeErrorDetails: true}))(ctx, event)
	require.NoError(t, err)
	return resp
}

func requireCORS(t *testing.T, resp events.APIGatewayProxyResponse) {
	t.Helper()
	h := http.Header(resp.MultiValueHeaders)
	require.Equal(t, "application/json", h.Get("Content-Type"))
	require.Equal(t, "*", h.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "Content-Type", h.Get("Access-Control-Allow-Headers"))
	require.Equal(t, "POST, OPTIONS", h.Get("Access-Control-Allow-Methods"))
}

func TestProxyScenarios(t *testing.T) {
	tests := []struct {
		name       string
		signer     stubSigner
		body       string
		wantStatus int
		wantBody   any
	}{
		{
			name:       "issued",
			signer:     stubSigner{url: "https://signed.example/..."},
			body:       `{"s3Key":"docs/a.pdf","contentType":"application/pdf","userId":"u1"}`,
			wantStatus: http.StatusOK,
			wantBody: model.UploadResponse{
				UploadURL: "https://signed.example/...",
				S3Key:     "docs/a.pdf",
				ExpiresIn: 300,
			},
		},
		{
			name:       "missing key",
			signer:     stubSigner{url: "https://signed.example/..."},
			body:       `{"s3Key":"","contentType":"x","userId":"u1"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   model.ErrorResponse{Error: model.MsgMissingParameters},
		},
		{
			name:       "signer rejects",
			signer:     stubSigner{err: errors.New("access denied")},
			body:       `{"s3Key":"docs/a.pdf","contentType":"application/pdf","userId":"u1"}`,
			wantStatus: http.StatusInternalServerError,
			wantBody:   model.ErrorResponse{Error: model.MsgSigningFailed, Details: "access denied"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := invoke(t, tt.signer, events.APIGatewayProxyRequest{
				HTTPMethod: http.MethodPost,
				Path:       "/presigned-url",
				Body:       tt.body,
			})

			require.Equal(t, tt.wantStatus, resp.StatusCode)
			requireCORS(t, resp)

			want, err := json.Marshal(tt.wantBody)
			require.NoError(t, err)
			require.JSONEq(t, string(want), resp.Body)
		})
	}
}

func TestProxyBase64Body(t *testing.T) {
	body := `{"s3Key":"docs/a.pdf","contentType":"application/pdf","userId":"u1"}`
	resp := invoke(t, stubSigner{url: "https://signed.example/..."}, events.APIGatewayProxyRequest{
		HTTPMethod:      http.MethodPost,
		Path:            "/presigned-url",
		Body:            base64.StdEncoding.EncodeToString([]byte(body)),
		IsBase64Encoded: true,
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"uploadUrl":"https://signed.example/...","s3Key":"docs/a.pdf","expiresIn":300}`, resp.Body)
}

func TestProxyPreflight(t *testing.T) {
	resp := invoke(t, stubSigner{}, events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodOptions,
		Path:       "/presigned-url",
	})

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	requireCORS(t, resp)
	require.Empty(t, resp.Body)
}
