package worker

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/jmehdipour/email-dispatch/internal/kafka"
	"github.com/jmehdipour/email-dispatch/internal/sqs"
)

// Delivery is one queue message. Ref is the source's own handle, used for Ack.
type Delivery struct {
	ID   string
	Body []byte
	Ref  any
}

type Source interface {
	Fetch(ctx context.Context) (Delivery, error)
	Ack(ctx context.Context, d Delivery) error
	Close() error
}

// orderedAcker is implemented by sources whose ack covers every earlier
// message too. Processing them on more than one goroutine lets a later
// commit skip past a failed delivery.
type orderedAcker interface {
	OrderedAck() bool
}

type kafkaSource struct {
	c *kafka.Consumer
}

// FromKafka acks by committing the message offset. Offsets are cumulative per
// partition, so a later commit also covers an earlier unacked message.
func FromKafka(c *kafka.Consumer) Source { return kafkaSource{c: c} }

func (s kafkaSource) Fetch(ctx context.Context) (Delivery, error) {
	m, err := s.c.Fetch(ctx)
	if err != nil {
		return Delivery{}, err
	}
	return Delivery{
		ID:   fmt.Sprintf("%s/%d/%d", m.Topic, m.Partition, m.Offset),
		Body: m.Value,
		Ref:  m,
	}, nil
}

func (s kafkaSource) Ack(ctx context.Context, d Delivery) error {
	m, ok := d.Ref.(kafka.Message)
	if !ok {
		return fmt.Errorf("kafka ack: unexpected ref %T", d.Ref)
	}
	return s.c.Commit(ctx, m)
}

func (s kafkaSource) Close() error { return s.c.Close() }

func (kafkaSource) OrderedAck() bool { return true }

type sqsSource struct {
	c *sqs.Consumer
}

// FromSQS acks by deleting the message; unacked messages reappear after
// the visibility timeout.
func FromSQS(c *sqs.Consumer) Source { return sqsSource{c: c} }

func (s sqsSource) Fetch(ctx context.Context) (Delivery, error) {
	m, err := s.c.Fetch(ctx)
	if err != nil {
		return Delivery{}, err
	}
	return Delivery{
		ID:   aws.ToString(m.MessageId),
		Body: []byte(aws.ToString(m.Body)),
		Ref:  m,
	}, nil
}

func (s sqsSource) Ack(ctx context.Context, d Delivery) error {
	m, ok := d.Ref.(sqs.Message)
	if !ok {
		return fmt.Errorf("sqs ack: unexpected ref %T", d.Ref)
	}
	return s.c.Commit(ctx, m)
}

func (s sqsSource) Close() error { return s.c.Close() }
