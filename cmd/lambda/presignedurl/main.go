package main

import (
	"context"
	"net/http"

	"github.com/sainapse/presigned-upload/internal/config"
	"github.com/sainapse/presigned-upload/internal/handler"
	"github.com/sainapse/presigned-upload/internal/lambda"
)

func main() {
	lambda.StartHTTPHandler(func(ctx context.Context, cfg config.Config) (http.Handler, error) {
		return handler.NewFromConfig(ctx, cfg, nil)
	})
}
