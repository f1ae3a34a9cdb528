package stream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/apula/responder-api/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	streamav "github.com/aws/aws-sdk-go-v2/feature/dynamodbstreams/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	streamtypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"
)

// Dispatcher is the fan-out entry point the consumer drives.
type Dispatcher interface {
	FanOut(ctx context.Context, ev *domain.DispatchEvent) error
}

type tableAPI interface {
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

type streamsAPI interface {
	DescribeStream(ctx context.Context, in *dynamodbstreams.DescribeStreamInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.DescribeStreamOutput, error)
	GetShardIterator(ctx context.Context, in *dynamodbstreams.GetShardIteratorInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetShardIteratorOutput, error)
	GetRecords(ctx context.Context, in *dynamodbstreams.GetRecordsInput, optFns ...func(*dynamodbstreams.Options)) (*dynamodbstreams.GetRecordsOutput, error)
}

// Consumer tails the dispatches table's DynamoDB Stream and fires the
// fan-out once per INSERT record. MODIFY and REMOVE records are ignored, so
// an event triggers at most one fan-out attempt no matter who wrote it.
type Consumer struct {
	db           tableAPI
	streams      streamsAPI
	tableName    string
	dispatcher   Dispatcher
	pollInterval time.Duration

	// shardID -> current iterator for shards being drained.
	iterators map[string]string
	// seen holds every shard ever opened. A shard is iterated at most once;
	// retired shards (closed or failed) are never reopened, which keeps
	// fan-out at most once per record.
	seen map[string]bool
	// started flips after the first successful shard listing.
	started bool
}

func NewConsumer(db tableAPI, streams streamsAPI, tableName string, dispatcher Dispatcher, pollInterval time.Duration) *Consumer {
	return &Consumer{
		db:           db,
		streams:      streams,
		tableName:    tableName,
		dispatcher:   dispatcher,
		pollInterval: pollInterval,
		iterators:    make(map[string]string),
		seen:         make(map[string]bool),
	}
}

// Run polls the stream until ctx is cancelled. Fan-out errors are logged and
// never retried: delivery is best-effort and at most once per event.
func (c *Consumer) Run(ctx context.Context) error {
	streamArn, err := c.streamArn(ctx)
	if err != nil {
		return err
	}
	slog.Info("dispatch stream consumer started", "table", c.tableName, "stream_arn", streamArn)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		if err := c.refreshShards(ctx, streamArn); err != nil {
			slog.Warn("failed to refresh stream shards", "err", err)
		}
		c.drainShards(ctx)

		select {
		case <-ctx.Done():
			slog.Info("dispatch stream consumer stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Consumer) streamArn(ctx context.Context) (string, error) {
	out, err := c.db.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(c.tableName),
	})
	if err != nil {
		return "", fmt.Errorf("describe table %s: %w", c.tableName, err)
	}
	if out.Table.LatestStreamArn == nil {
		return "", fmt.Errorf("table %s has no stream enabled", c.tableName)
	}
	return *out.Table.LatestStreamArn, nil
}

// refreshShards opens an iterator for every shard not yet seen. The first
// listing positions shards at LATEST, so dispatches created while the
// consumer was down are not replayed. Shards that appear later, such as
// successors of closed shards, start at TRIM_HORIZON: records written into
// them before the listing caught up must not be skipped.
func (c *Consumer) refreshShards(ctx context.Context, streamArn string) error {
	out, err := c.streams.DescribeStream(ctx, &dynamodbstreams.DescribeStreamInput{
		StreamArn: aws.String(streamArn),
	})
	if err != nil {
		return err
	}
	iterType := streamtypes.ShardIteratorTypeTrimHorizon
	if !c.started {
		iterType = streamtypes.ShardIteratorTypeLatest
	}
	for _, shard := range out.StreamDescription.Shards {
		if shard.ShardId == nil {
			continue
		}
		if c.seen[*shard.ShardId] {
			continue
		}
		iterOut, err := c.streams.GetShardIterator(ctx, &dynamodbstreams.GetShardIteratorInput{
			StreamArn:         aws.String(streamArn),
			ShardId:           shard.ShardId,
			ShardIteratorType: iterType,
		})
		if err != nil {
			slog.Warn("failed to open shard iterator", "shard", *shard.ShardId, "err", err)
			continue
		}
		if iterOut.ShardIterator != nil {
			c.seen[*shard.ShardId] = true
			c.iterators[*shard.ShardId] = *iterOut.ShardIterator
		}
	}
	c.started = true
	return nil
}

func (c *Consumer) drainShards(ctx context.Context) {
	for shardID, iterator := range c.iterators {
		out, err := c.streams.GetRecords(ctx, &dynamodbstreams.GetRecordsInput{
			ShardIterator: aws.String(iterator),
		})
		if err != nil {
			// Retire the shard rather than reopening it: a fresh TRIM_HORIZON
			// iterator would replay records already fanned out.
			slog.Warn("failed to read stream records, retiring shard", "shard", shardID, "err", err)
			delete(c.iterators, shardID)
			continue
		}
		for _, record := range out.Records {
			ev, ok := toDispatchEvent(record)
			if !ok {
				continue
			}
			if err := c.dispatcher.FanOut(ctx, ev); err != nil {
				slog.Error("dispatch fan-out failed", "dispatch_id", ev.DispatchID, "err", err)
			}
		}
		if out.NextShardIterator == nil {
			// Shard closed; its successor will show up on a later refresh.
			delete(c.iterators, shardID)
			continue
		}
		c.iterators[shardID] = *out.NextShardIterator
	}
}

// toDispatchEvent extracts a DispatchEvent from an INSERT stream record.
// Returns false for non-INSERT records and records without a new image.
func toDispatchEvent(record streamtypes.Record) (*domain.DispatchEvent, bool) {
	if record.EventName != streamtypes.OperationTypeInsert {
		return nil, false
	}
	if record.Dynamodb == nil || record.Dynamodb.NewImage == nil {
		return nil, false
	}
	var ev domain.DispatchEvent
	if err := streamav.UnmarshalMap(record.Dynamodb.NewImage, &ev); err != nil {
		slog.Warn("failed to unmarshal dispatch stream record", "err", err)
		return nil, false
	}
	return &ev, true
}
