package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	pkgconfig "github.com/Ashhhad/kiosk-flow-master/pkg/config"
)

var ErrSnapshotNotFound = errors.New("session snapshot not found")

// SessionRepository is the remote side of persistence: session
// snapshots pushed to DynamoDB by the debounced syncer.
type SessionRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoDBClient(cfg *pkgconfig.Config) (*dynamodb.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(awsCfg), nil
}

func NewSessionRepository(client *dynamodb.Client, tableName string) *SessionRepository {
	return &SessionRepository{
		client:    client,
		tableName: tableName,
	}
}

func (r *SessionRepository) PutSnapshot(ctx context.Context, ps PersistedSession) error {
	av, err := attributevalue.MarshalMap(ps)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	av["PK"] = &types.AttributeValueMemberS{Value: fmt.Sprintf("SESSION#%s", ps.SessionID)}
	av["SK"] = &types.AttributeValueMemberS{Value: "SNAPSHOT"}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})

	if err != nil {
		return fmt.Errorf("failed to put snapshot: %w", err)
	}

	return nil
}

func (r *SessionRepository) GetSnapshot(ctx context.Context, sessionID string) (*PersistedSession, error) {
	pk := fmt.Sprintf("SESSION#%s", sessionID)

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: "SNAPSHOT"},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, ErrSnapshotNotFound
	}

	var ps PersistedSession
	if err := attributevalue.UnmarshalMap(out.Item, &ps); err != nil {
		return nil, err
	}
	return &ps, nil
}
