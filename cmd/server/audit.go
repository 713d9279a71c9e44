package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"checkout/internal/audit"
	"checkout/internal/platform/config"
)

const (
	auditQueueSize       = 1024
	auditTopicPartitions = 3
	auditBreakerFailures = 5
	auditBreakerCooldown = 30 * time.Second
)

// auditPipeline is where the checkout service appends audit events. With
// Kafka configured, events are queued and published by a background worker
// that falls back to the log while the brokers are failing.
//
// stop closes the queue so the worker exits once it has published the
// backlog; call it only after the HTTP server has stopped serving.
type auditPipeline struct {
	store  audit.Store
	worker *audit.Worker
	stop   func()
	close  func()
}

func buildAudit(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (*auditPipeline, error) {
	if len(cfg.Brokers) == 0 {
		log.Info("kafka not configured, audit events go to the log")
		return &auditPipeline{store: audit.NewLogStore(log), stop: func() {}, close: func() {}}, nil
	}

	client, err := audit.NewKafkaClient(cfg.Brokers, cfg.AuditTopic)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	if err := audit.EnsureTopic(ctx, client, cfg.AuditTopic, auditTopicPartitions); err != nil {
		client.Close()
		return nil, err
	}

	queue := audit.NewQueue(auditQueueSize)
	sink := audit.NewBreakerStore(
		audit.NewKafkaStore(client, cfg.AuditTopic),
		audit.NewLogStore(log),
		audit.NewCircuitBreaker(auditBreakerFailures, auditBreakerCooldown),
		log,
	)
	worker := audit.NewWorker(sink, queue.Events(), log)
	log.Info("publishing audit events to kafka", "topic", cfg.AuditTopic, "brokers", cfg.Brokers)
	return &auditPipeline{store: queue, worker: worker, stop: queue.Close, close: client.Close}, nil
}
