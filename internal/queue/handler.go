package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/OFFIS-RIT/atlas/internal/util"
	"github.com/OFFIS-RIT/atlas/pkg/graph"
	"github.com/OFFIS-RIT/atlas/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

// ProcessIngestMessage handles one ingest_queue delivery: it records and
// links every pair row of the batch, then emits a completion event.
func ProcessIngestMessage(
	ctx context.Context,
	client *graph.Client,
	ch *amqp091.Channel,
	msg string,
) error {
	data := new(IngestJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to unmarshal ingest job: %w", err)
	}

	start := time.Now()
	stats, err := client.IngestPairs(ctx, data.Batch)
	if err != nil {
		return fmt.Errorf("ingest job %s: %w", data.JobID, err)
	}

	progress := util.Progress{Done: stats.Linked + stats.Skipped, Total: stats.Rows}
	logger.Info("[Queue] Ingest job completed",
		"job_id", data.JobID,
		"progress", progress.String(),
		"linked", stats.Linked,
		"skipped", stats.Skipped,
		"duration", time.Since(start).Round(time.Millisecond))

	publishJobEvent(ch, "jobs.ingest.completed", JobEventMsg{
		JobID:    data.JobID,
		Kind:     "ingest",
		Progress: progress.String(),
		Linked:   stats.Linked,
		Skipped:  stats.Skipped,
	})
	return nil
}

// ProcessUnifyMessage handles one unify_queue delivery: it runs the
// unification algorithm over the table, then emits a completion event.
func ProcessUnifyMessage(
	ctx context.Context,
	client *graph.Client,
	ch *amqp091.Channel,
	msg string,
) error {
	data := new(UnifyJobMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to unmarshal unify job: %w", err)
	}

	start := time.Now()
	stats, err := client.UnifyTable(ctx, data.Table)
	if err != nil {
		return fmt.Errorf("unify job %s: %w", data.JobID, err)
	}

	progress := util.Progress{Done: stats.Linked + stats.Dropped, Total: stats.Pairs}
	logger.Info("[Queue] Unify job completed",
		"job_id", data.JobID,
		"groups", stats.Groups,
		"progress", progress.String(),
		"linked", stats.Linked,
		"dropped", stats.Dropped,
		"duration", time.Since(start).Round(time.Millisecond))

	publishJobEvent(ch, "jobs.unify.completed", JobEventMsg{
		JobID:    data.JobID,
		Kind:     "unify",
		Progress: progress.String(),
		Groups:   stats.Groups,
		Linked:   stats.Linked,
		Dropped:  stats.Dropped,
	})
	return nil
}

func publishJobEvent(ch *amqp091.Channel, topic string, event JobEventMsg) {
	body, err := json.Marshal(event)
	if err != nil {
		logger.Warn("[Queue] Failed to marshal job event", "job_id", event.JobID, "err", err)
		return
	}
	if err := PublishTopic(ch, topic, body); err != nil {
		logger.Warn("[Queue] Failed to publish job event", "job_id", event.JobID, "topic", topic, "err", err)
	}
}
