package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/cashcarbc/voice-intake/cmd/mainconfig"
	"github.com/cashcarbc/voice-intake/internal/app/bootstrap"
	appconfig "github.com/cashcarbc/voice-intake/internal/config"
	"github.com/cashcarbc/voice-intake/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	if cfg.SessionBackend != "redis" {
		logger.Warn("lambda running with in-memory sessions; calls only survive on a warm instance")
	}

	ctx := context.Background()
	var clients bootstrap.AWSClients
	if awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg); err != nil {
		logger.Error("failed to load AWS config; SQS and SES sinks disabled", "error", err)
	} else {
		clients.SQS = mainconfig.SQSClient(awsCfg, cfg)
		clients.SES = mainconfig.SESClient(awsCfg, cfg)
	}

	app, err := bootstrap.Build(ctx, cfg, clients, logger)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	lambda.Start(func(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return handle(ctx, app.Handler, evt)
	})
}

// handle serves one API Gateway event through the intake router in-process.
func handle(ctx context.Context, h http.Handler, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	path := strings.TrimSpace(evt.RawPath)
	if path == "" {
		path = strings.TrimSpace(evt.RequestContext.HTTP.Path)
	}

	switch path {
	case "/health":
		if method != http.MethodGet {
			return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusMethodNotAllowed}, nil
		}
	case "/twilio/voice", "/twilio/collect":
		if method != http.MethodPost {
			return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusMethodNotAllowed}, nil
		}
	default:
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusNotFound}, nil
	}

	body, err := decodeBody(evt)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest, Body: "invalid body"}, nil
	}

	target := path
	if qs := strings.TrimSpace(evt.RawQueryString); qs != "" {
		target += "?" + qs
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}, nil
	}
	for k, v := range evt.Headers {
		req.Header.Set(k, v)
	}
	if ip := strings.TrimSpace(evt.RequestContext.HTTP.SourceIP); ip != "" {
		req.RemoteAddr = ip + ":0"
	}

	// The signature is computed over the public URL, so keep its host and scheme.
	host := strings.TrimSpace(evt.RequestContext.DomainName)
	if host == "" {
		host = strings.TrimSpace(headerValue(evt.Headers, "host"))
	}
	if host != "" {
		req.Host = host
		req.Header.Set("X-Forwarded-Host", host)
	}
	if strings.TrimSpace(req.Header.Get("X-Forwarded-Proto")) == "" {
		req.Header.Set("X-Forwarded-Proto", "https")
	}

	w := newBufferedResponse()
	h.ServeHTTP(w, req)

	out := events.APIGatewayV2HTTPResponse{
		StatusCode: w.status,
		Body:       w.body.String(),
		Headers:    map[string]string{},
	}
	for k := range w.header {
		out.Headers[strings.ToLower(k)] = w.header.Get(k)
	}
	return out, nil
}

func decodeBody(evt events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if !evt.IsBase64Encoded {
		return []byte(evt.Body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(evt.Body)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

func headerValue(headers map[string]string, key string) string {
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// bufferedResponse collects a handler's output for the Lambda response.
type bufferedResponse struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: http.Header{}, status: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(status int) {
	if b.wroteHeader {
		return
	}
	b.wroteHeader = true
	b.status = status
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.wroteHeader = true
	return b.body.Write(p)
}
