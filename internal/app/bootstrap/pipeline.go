package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"

	"github.com/chatrelay/chatrelay/cmd/mainconfig"
	appconfig "github.com/chatrelay/chatrelay/internal/config"
	"github.com/chatrelay/chatrelay/internal/conversation"
	"github.com/chatrelay/chatrelay/internal/intent"
	"github.com/chatrelay/chatrelay/internal/observability/metrics"
	"github.com/chatrelay/chatrelay/pkg/logging"
)

// Pipeline bundles the wired ingress and egress stages plus the stores they
// share, so each binary can pick the pieces it runs.
type Pipeline struct {
	Router   *conversation.Router
	Worker   *conversation.Worker
	Records  conversation.ConversationStore
	Sessions conversation.SessionStore
}

// BuildPipeline wires the full pipeline from config. With USE_MEMORY_QUEUE the
// whole pipeline runs in-process against memory stores; otherwise it uses SQS
// and DynamoDB (or Redis for sessions, per SESSION_STORE).
func BuildPipeline(ctx context.Context, cfg *appconfig.Config, m *metrics.PipelineMetrics, logger *logging.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.UseMemoryQueue {
		logger.Info("using in-memory queue and stores")
		queue := conversation.NewMemoryQueue(256)
		records := conversation.NewMemoryConversationStore()
		sessions := conversation.NewMemorySessionStore()
		return &Pipeline{
			Router:   conversation.NewRouter(queue, records, logger, conversation.WithRouterMetrics(m)),
			Worker:   buildWorker(queue, records, sessions, cfg, m, logger),
			Records:  records,
			Sessions: sessions,
		}, nil
	}

	if cfg.MessageQueueURL == "" {
		return nil, fmt.Errorf("bootstrap: MESSAGE_QUEUE_URL is required")
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
	}

	queue := conversation.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.MessageQueueURL)
	records, sessions, err := BuildStores(cfg, dynamodb.NewFromConfig(awsCfg))
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		Router:   conversation.NewRouter(queue, records, logger, conversation.WithRouterMetrics(m)),
		Worker:   buildWorker(queue, records, sessions, cfg, m, logger),
		Records:  records,
		Sessions: sessions,
	}, nil
}

// BuildDetachedWorker wires an egress worker with no queue attached, for
// runtimes where batches arrive through an external trigger.
func BuildDetachedWorker(ctx context.Context, cfg *appconfig.Config, m *metrics.PipelineMetrics, logger *logging.Logger) (*conversation.Worker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
	}

	records, sessions, err := BuildStores(cfg, dynamodb.NewFromConfig(awsCfg))
	if err != nil {
		return nil, err
	}
	return buildWorker(nil, records, sessions, cfg, m, logger), nil
}

// BuildStores constructs the conversation log store and the session store.
// Sessions live in DynamoDB unless SESSION_STORE=redis.
func BuildStores(cfg *appconfig.Config, dynamoClient *dynamodb.Client) (conversation.ConversationStore, conversation.SessionStore, error) {
	records := conversation.NewDynamoConversationStore(dynamoClient, cfg.ConversationsTable, cfg.ConversationTTL)

	if cfg.SessionStore == "redis" {
		redisClient, err := BuildRedisClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		return records, conversation.NewRedisSessionStore(redisClient, 0), nil
	}

	return records, conversation.NewDynamoSessionStore(dynamoClient, cfg.SessionsTable), nil
}

// BuildRedisClient constructs the Redis client for session storage.
func BuildRedisClient(cfg *appconfig.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("bootstrap: REDIS_ADDR is required when SESSION_STORE=redis")
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts), nil
}

func buildWorker(queue conversation.Queue, records conversation.ConversationStore, sessions conversation.SessionStore, cfg *appconfig.Config, m *metrics.PipelineMetrics, logger *logging.Logger) *conversation.Worker {
	return conversation.NewWorker(queue, records, conversation.NewUpdater(sessions, logger), intent.NewResponder(), logger,
		conversation.WithWorkerCount(cfg.WorkerCount),
		conversation.WithAnalyticsSink(conversation.NewLogSink(logger)),
		conversation.WithWorkerMetrics(m),
	)
}
