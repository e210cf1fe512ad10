package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/chatrelay/chatrelay/internal/app/bootstrap"
	appconfig "github.com/chatrelay/chatrelay/internal/config"
	"github.com/chatrelay/chatrelay/internal/conversation"
	"github.com/chatrelay/chatrelay/pkg/logging"
)

type app struct {
	router *conversation.Router
	logger *logging.Logger
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	pipeline, err := bootstrap.BuildPipeline(context.Background(), cfg, nil, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	a := &app{router: pipeline.Router, logger: logger}
	lambda.Start(a.handle)
}

func (a *app) handle(ctx context.Context, req events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	if req.RequestContext.HTTP.Method == http.MethodOptions {
		return response(http.StatusNoContent, nil), nil
	}

	payload, err := decodeBody(req)
	if err != nil {
		return response(http.StatusBadRequest, map[string]string{"error": "invalid request body"}), nil
	}

	ack, err := a.router.Accept(ctx, payload)
	if err != nil {
		var verr *conversation.ValidationError
		if errors.As(err, &verr) {
			return response(http.StatusBadRequest, map[string]string{"error": verr.Reason}), nil
		}
		a.logger.Error("failed to accept message", "error", err)
		return response(http.StatusInternalServerError, map[string]string{"error": err.Error()}), nil
	}

	return response(http.StatusOK, ack), nil
}

func decodeBody(req events.LambdaFunctionURLRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	return base64.StdEncoding.DecodeString(req.Body)
}

// response builds a JSON response with permissive CORS headers so browser
// widgets can post from any origin.
func response(status int, payload any) events.LambdaFunctionURLResponse {
	out := events.LambdaFunctionURLResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                 "application/json",
			"Access-Control-Allow-Origin":  "*",
			"Access-Control-Allow-Headers": "Content-Type",
			"Access-Control-Allow-Methods": "OPTIONS, POST, GET",
		},
	}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err == nil {
			out.Body = string(body)
		}
	}
	return out
}
