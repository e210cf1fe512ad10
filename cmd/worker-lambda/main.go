package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/chatrelay/chatrelay/internal/app/bootstrap"
	appconfig "github.com/chatrelay/chatrelay/internal/config"
	"github.com/chatrelay/chatrelay/internal/conversation"
	"github.com/chatrelay/chatrelay/pkg/logging"
)

type result struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type app struct {
	worker *conversation.Worker
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	worker, err := bootstrap.BuildDetachedWorker(context.Background(), cfg, nil, logger)
	if err != nil {
		logger.Error("failed to build worker", "error", err)
		os.Exit(1)
	}

	a := &app{worker: worker}
	lambda.Start(a.handle)
}

// handle processes one queue-triggered batch. Malformed records are logged
// and dropped rather than returned for retry.
func (a *app) handle(ctx context.Context, evt events.SQSEvent) (result, error) {
	bodies := make([]string, 0, len(evt.Records))
	for _, record := range evt.Records {
		bodies = append(bodies, record.Body)
	}

	count := a.worker.ProcessBatch(ctx, bodies)
	return result{Status: "processed", Count: count}, nil
}
