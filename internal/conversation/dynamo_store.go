package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// dynamoAPI is the minimal DynamoDB surface the stores need. Defined here for
// testability.
type dynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoConversationStore persists conversation records in a table keyed by
// (conversation_id, timestamp).
type DynamoConversationStore struct {
	api   dynamoAPI
	table string
	ttl   time.Duration
}

// NewDynamoConversationStore creates the conversation log store. A zero ttl
// disables item expiry.
func NewDynamoConversationStore(api dynamoAPI, table string, ttl time.Duration) *DynamoConversationStore {
	if api == nil {
		panic("conversation: dynamo api cannot be nil")
	}
	if table == "" {
		panic("conversation: conversations table cannot be empty")
	}
	return &DynamoConversationStore{api: api, table: table, ttl: ttl}
}

func (s *DynamoConversationStore) AppendRecord(ctx context.Context, rec Record) error {
	if s.ttl > 0 && rec.ExpiresAt == 0 {
		rec.ExpiresAt = time.Now().Add(s.ttl).Unix()
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("conversation: failed to marshal record: %w", err)
	}

	if _, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("conversation: failed to put record: %w", err)
	}
	return nil
}

// ListRecords returns the latest records for a conversation in chronological
// order, at most limit entries.
func (s *DynamoConversationStore) ListRecords(ctx context.Context, conversationID string, limit int32) ([]Record, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("conversation_id = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: conversationID},
		},
		// Newest first so Limit keeps the most recent rows.
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		in.Limit = aws.Int32(limit)
	}

	out, err := s.api.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to query records: %w", err)
	}

	records := make([]Record, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
		return nil, fmt.Errorf("conversation: failed to unmarshal records: %w", err)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// DynamoSessionStore persists user sessions in a table keyed by user_id.
type DynamoSessionStore struct {
	api   dynamoAPI
	table string
}

// NewDynamoSessionStore creates the session store.
func NewDynamoSessionStore(api dynamoAPI, table string) *DynamoSessionStore {
	if api == nil {
		panic("conversation: dynamo api cannot be nil")
	}
	if table == "" {
		panic("conversation: sessions table cannot be empty")
	}
	return &DynamoSessionStore{api: api, table: table}
}

func (s *DynamoSessionStore) GetSession(ctx context.Context, userID string) (*UserSession, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to get session: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, nil
	}

	var session UserSession
	if err := attributevalue.UnmarshalMap(out.Item, &session); err != nil {
		return nil, fmt.Errorf("conversation: failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *DynamoSessionStore) PutSession(ctx context.Context, session UserSession) error {
	item, err := attributevalue.MarshalMap(session)
	if err != nil {
		return fmt.Errorf("conversation: failed to marshal session: %w", err)
	}

	if _, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("conversation: failed to put session: %w", err)
	}
	return nil
}
