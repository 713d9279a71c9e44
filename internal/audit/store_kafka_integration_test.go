//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"checkout/internal/audit"
	"checkout/pkg/testutil/containers"
)

type KafkaStoreSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
}

func TestKafkaStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaStoreSuite))
}

func (s *KafkaStoreSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
}

func (s *KafkaStoreSuite) TestAppendIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "checkout.audit." + uuid.NewString()
	producer, err := audit.NewKafkaClient([]string{s.redpanda.Broker}, topic)
	s.Require().NoError(err)
	defer producer.Close()

	s.Require().NoError(audit.EnsureTopic(ctx, producer, topic, 1))
	s.Require().NoError(audit.EnsureTopic(ctx, producer, topic, 1), "second call tolerates existing topic")

	store := audit.NewKafkaStore(producer, topic)
	sessionID := uuid.NewString()
	s.Require().NoError(store.Append(ctx, audit.Event{
		Timestamp:   time.Now().UTC(),
		SessionID:   sessionID,
		Action:      audit.ActionOrderPlaced,
		OrderNumber: 123456,
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().NoError(fetches.Err())

	var got []audit.Event
	fetches.EachRecord(func(r *kgo.Record) {
		var e audit.Event
		s.Require().NoError(json.Unmarshal(r.Value, &e))
		got = append(got, e)
	})
	s.Require().Len(got, 1)
	s.Equal(sessionID, got[0].SessionID)
	s.Equal(audit.ActionOrderPlaced, got[0].Action)
	s.Equal(123456, got[0].OrderNumber)
}
