package mq

import (
	"context"
	"encoding/json"
	"log"

	"campium/models"
	"campium/rdx"
)

const workflowChannel = "workflow-events"

// Emit publishes a workflow event to Redis. Failures are logged and swallowed;
// emission is never allowed to fail the transition that triggered it.
func Emit(ctx context.Context, event models.WorkflowEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Emit] Failed to marshal event: %v", err)
		return
	}

	if err := rdx.Conn.Publish(ctx, workflowChannel, data).Err(); err != nil {
		log.Printf("[Emit] Failed to publish event to Redis: %v", err)
		return
	}
}

// StartWorkflowWorker consumes workflow events for audit logging. Runs until
// the subscription channel closes.
func StartWorkflowWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, workflowChannel)
	ch := sub.Channel()

	log.Println("[WorkflowWorker] Listening for workflow events...")

	for msg := range ch {
		var event models.WorkflowEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[WorkflowWorker] Failed to parse event: %v", err)
			continue
		}
		log.Printf("[WorkflowWorker] %s %s by %s (%s)", event.EntityType, event.Action, event.ActorID, event.EntityID)
	}
}
