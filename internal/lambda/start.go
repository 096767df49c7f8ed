// Package lambda runs an http.Handler on the AWS Lambda runtime behind an API
// Gateway REST proxy integration.
package lambda

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	logging "github.com/ipfs/go-log/v2"

	"github.com/sainapse/presigned-upload/internal/config"
	"github.com/sainapse/presigned-upload/internal/telemetry"
)

var log = logging.Logger("lambda")

// ProxyHandler is a function that handles API Gateway proxy events, suitable to use as a lambda handler.
type ProxyHandler func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// HTTPHandlerBuilder is a function that creates a http.Handler from a config.
type HTTPHandlerBuilder func(context.Context, config.Config) (http.Handler, error)

// Proxy adapts handler so each proxy event's body, headers and context reach
// it as an *http.Request.
func Proxy(handler http.Handler) ProxyHandler {
	return httpadapter.New(handler).ProxyWithContext
}

// StartHTTPHandler loads configuration from the environment and starts a
// lambda handler that processes HTTP requests.
func StartHTTPHandler(makeHandler HTTPHandlerBuilder) {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logging.SetLogLevel("*", cfg.LogLevel); err != nil {
		log.Warnw("invalid log level, keeping default", "level", cfg.LogLevel, "err", err)
	}
	if err := telemetry.SetupErrorReporting(cfg.SentryDSN, cfg.SentryEnvironment); err != nil {
		log.Errorw("error reporting disabled", "err", err)
	}

	handler, err := makeHandler(ctx, cfg)
	if err != nil {
		telemetry.ReportError(err)
		telemetry.Flush(2 * time.Second)
		panic(err)
	}

	lambda.StartWithOptions(Proxy(handler), lambda.WithContext(ctx))
}
