package bootstrap

import (
	"context"
	"testing"

	appconfig "github.com/chatrelay/chatrelay/internal/config"
	"github.com/chatrelay/chatrelay/pkg/logging"
)

func TestBuildPipelineRequiresConfig(t *testing.T) {
	if _, err := BuildPipeline(context.Background(), nil, nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestBuildPipelineMemoryMode(t *testing.T) {
	cfg := &appconfig.Config{UseMemoryQueue: true, WorkerCount: 1}

	p, err := BuildPipeline(context.Background(), cfg, nil, logging.New("error"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Router == nil || p.Worker == nil || p.Records == nil || p.Sessions == nil {
		t.Fatalf("expected fully wired pipeline, got %+v", p)
	}
}

func TestBuildPipelineRequiresQueueURL(t *testing.T) {
	cfg := &appconfig.Config{}

	if _, err := BuildPipeline(context.Background(), cfg, nil, logging.New("error")); err == nil {
		t.Fatalf("expected error for missing queue URL")
	}
}

func TestBuildRedisClientRequiresAddr(t *testing.T) {
	if _, err := BuildRedisClient(&appconfig.Config{}); err == nil {
		t.Fatalf("expected error for missing redis addr")
	}
}
