package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spacesedan/sentiment-analyzer/internal/clients"
	"github.com/spacesedan/sentiment-analyzer/internal/models"
	"github.com/spacesedan/sentiment-analyzer/internal/utils"
)

// DynamoDB caps BatchWriteItem at 25 items.
const maxWriteBatch = 25

const usageTTL = 30 * 24 * time.Hour

// UsageStore meters function invocations into a DynamoDB table. Optional:
// when USAGE_TABLE_NAME is unset the store is nil and every method no-ops.
// Only usage facts are written; results never leave the request.
type UsageStore struct {
	client *dynamodb.Client
	table  string
	buffer *utils.BatchBuffer[models.UsageRecord]
}

func InitUsageStore() *UsageStore {
	table := os.Getenv("USAGE_TABLE_NAME")
	if table == "" {
		slog.Info("[UsageStore] USAGE_TABLE_NAME not set, invocation metering disabled")
		return nil
	}

	slog.Info("[UsageStore] Metering invocations",
		slog.String("table", table))
	return &UsageStore{
		client: clients.GetDynamoDBClient(),
		table:  table,
		buffer: utils.NewBatchBuffer[models.UsageRecord](maxWriteBatch),
	}
}

// Record buffers one invocation. When the buffer fills, the batch is flushed
// in the background so the request path never waits on DynamoDB.
func (s *UsageStore) Record(function, status string, latency time.Duration) {
	if s == nil {
		return
	}

	now := time.Now()
	s.buffer.Add(models.UsageRecord{
		Function:  function,
		Status:    status,
		LatencyMS: latency.Milliseconds(),
		Timestamp: now.UnixNano(),
		ExpiresAt: now.Add(usageTTL).Unix(),
	})

	if s.buffer.Full() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.Flush(ctx); err != nil {
				slog.Warn("[UsageStore] Background flush failed",
					slog.String("error", err.Error()))
			}
		}()
	}
}

// Flush writes all buffered records, retrying unprocessed items with a
// doubling backoff.
func (s *UsageStore) Flush(ctx context.Context) error {
	if s == nil {
		return nil
	}

	records := s.buffer.GetAndClear()
	if len(records) == 0 {
		return nil
	}

	for i := 0; i < len(records); i += maxWriteBatch {
		end := i + maxWriteBatch
		if end > len(records) {
			end = len(records)
		}

		writeRequests := make([]types.WriteRequest, 0, maxWriteBatch)
		for _, rec := range records[i:end] {
			item, err := attributevalue.MarshalMap(rec)
			if err != nil {
				return fmt.Errorf("[UsageStore] Failed to marshal usage record: %w", err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				s.table: writeRequests,
			},
		})
		if err != nil {
			return fmt.Errorf("[UsageStore] Failed to batch write usage records: %w", err)
		}

		retryCount := 0
		backoffDuration := time.Millisecond * 500
		for len(out.UnprocessedItems) > 0 && retryCount < 3 {
			time.Sleep(backoffDuration)
			backoffDuration *= 2
			slog.Warn("[UsageStore] Retrying unprocessed records...",
				slog.Int("retry_attempt", retryCount+1),
				slog.Int("remaining_items", len(out.UnprocessedItems[s.table])))

			out, err = s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: out.UnprocessedItems,
			})
			if err != nil {
				return fmt.Errorf("[UsageStore] Failed to retry batch write: %w", err)
			}
			retryCount++
		}

		if len(out.UnprocessedItems) > 0 {
			slog.Error("[UsageStore] Some records were not written even after retries",
				slog.Int("remaining_items", len(out.UnprocessedItems[s.table])))
		}
	}

	slog.Info("[UsageStore] Flushed usage records",
		slog.Int("count", len(records)))
	return nil
}
