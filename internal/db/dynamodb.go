package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spacesedan/redditwatch/internal/clients"
	"github.com/spacesedan/redditwatch/internal/models"
)

const EVENTS_TABLE_NAME = "RedditActivityEvents"

var dbClient *dynamodb.Client

func InitDynamoDB() {
	dbClient = clients.GetDynamoDBClient()
}

// ArchiveEvents batch-writes consumed activity events. DynamoDB caps batch
// writes at 25 items; unprocessed leftovers are retried with backoff.
func ArchiveEvents(ctx context.Context, events []models.Event) error {
	if dbClient == nil {
		dbClient = clients.GetDynamoDBClient()
	}

	const maxBatchSize = 25
	for i := 0; i < len(events); i += maxBatchSize {
		select {
		case <-ctx.Done():
			slog.Warn("[DynamoDB] context canceled")
			return ctx.Err()
		default:
		}

		end := i + maxBatchSize
		if end > len(events) {
			end = len(events)
		}

		writeRequests := make([]types.WriteRequest, 0, maxBatchSize)
		for _, event := range events[i:end] {
			item, err := attributevalue.MarshalMap(event)
			if err != nil {
				return fmt.Errorf("[DynamoDB] Failed to marshal event %s: %w", event.ItemID, err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		out, err := dbClient.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				EVENTS_TABLE_NAME: writeRequests,
			},
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Failed to batch write events: %w", err)
		}

		retryCount := 0
		backoffDuration := time.Millisecond * 500
		for len(out.UnprocessedItems) > 0 && retryCount < 3 {
			time.Sleep(backoffDuration)
			backoffDuration *= 2
			slog.Warn("[DynamoDB] Retrying unprocessed items...",
				slog.Int("retry_attempt", retryCount+1),
				slog.Int("remaining_items", len(out.UnprocessedItems[EVENTS_TABLE_NAME])))

			out, err = dbClient.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: out.UnprocessedItems,
			})
			if err != nil {
				return fmt.Errorf("[DynamoDB] Failed to retry batch write: %w", err)
			}
			retryCount++
		}

		if len(out.UnprocessedItems) > 0 {
			slog.Error("[DynamoDB] Some events were not written even after retries",
				slog.Int("remaining_items", len(out.UnprocessedItems[EVENTS_TABLE_NAME])))
		}
	}

	return nil
}
