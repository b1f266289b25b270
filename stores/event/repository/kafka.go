package repository

import (
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/x-xyz/settlement/base/backoff"
	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/log"
	"github.com/x-xyz/settlement/domain/event"
)

type KafkaPublisherCfg struct {
	Brokers []string
	Topic   string
	// Retries is the number of extra attempts on a failed write
	Retries int
}

type KafkaPublisher struct {
	writer  *kafka.Writer
	retries int
}

// NewKafkaPublisher writes events keyed by contract so that a partition
// keeps the commit order of one contract
func NewKafkaPublisher(cfg *KafkaPublisherCfg) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		retries: cfg.Retries,
	}
}

func (p *KafkaPublisher) Name() string {
	return "kafka"
}

func (p *KafkaPublisher) Publish(c ctx.Ctx, e *event.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "eventId": e.Id}).Error("json.Marshal failed")
		return err
	}
	msg := kafka.Message{
		Key:   []byte(e.Contract),
		Value: b,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(e.Name)},
			{Key: "id", Value: []byte(e.Id)},
		},
	}

	bo := backoff.NewExponential(100*time.Millisecond, 2*time.Second)
	for {
		err = p.writer.WriteMessages(c, msg)
		if err == nil {
			return nil
		}
		if bo.Attempts() >= p.retries {
			break
		}
		if werr := bo.Wait(c); werr != nil {
			break
		}
	}
	c.WithFields(log.Fields{
		"err":      err,
		"eventId":  e.Id,
		"topic":    p.writer.Topic,
		"attempts": bo.Attempts() + 1,
	}).Error("writer.WriteMessages failed")
	return err
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
