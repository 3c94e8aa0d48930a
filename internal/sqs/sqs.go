// Package sqs wraps the AWS SQS queue the worker can consume from.
package sqs

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/jmehdipour/email-dispatch/internal/config"
)

// API is the subset of *sqs.Client used here.
type API interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type Message = types.Message

// NewClient builds an SQS client from the queue settings. Static credentials
// are used when access_key_and_secret_key is set, the default chain otherwise.
func NewClient(ctx context.Context, cfg config.SQSConfig) (*sqs.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if key, secret, ok := config.SplitKeyPair(cfg.AccessKeyAndSecret); ok {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, secret, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return sqs.NewFromConfig(awsCfg), nil
}

// Consumer long-polls a queue and hands messages out one at a time.
type Consumer struct {
	client            API
	queueURL          string
	waitTimeSeconds   int32
	maxMessages       int32
	visibilityTimeout int32

	mu  sync.Mutex
	buf []Message
}

func NewConsumer(client API, cfg config.SQSConfig) *Consumer {
	c := &Consumer{
		client:            client,
		queueURL:          cfg.QueueURL,
		waitTimeSeconds:   cfg.WaitTimeSeconds,
		maxMessages:       cfg.MaxMessages,
		visibilityTimeout: cfg.VisibilityTimeout,
	}
	if c.waitTimeSeconds < 0 || c.waitTimeSeconds > 20 {
		c.waitTimeSeconds = 20
	}
	if c.maxMessages <= 0 || c.maxMessages > 10 {
		c.maxMessages = 10
	}
	return c
}

// Fetch blocks until a message is available or ctx is done.
func (c *Consumer) Fetch(ctx context.Context) (Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.buf) == 0 {
		if err := ctx.Err(); err != nil {
			return Message{}, err
		}

		in := &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: c.maxMessages,
			WaitTimeSeconds:     c.waitTimeSeconds,
		}
		if c.visibilityTimeout > 0 {
			in.VisibilityTimeout = c.visibilityTimeout
		}

		out, err := c.client.ReceiveMessage(ctx, in)
		if err != nil {
			return Message{}, fmt.Errorf("sqs receive: %w", err)
		}
		c.buf = append(c.buf, out.Messages...)
	}

	m := c.buf[0]
	c.buf = c.buf[1:]
	return m, nil
}

// Commit deletes the message from the queue.
func (c *Consumer) Commit(ctx context.Context, m Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("sqs delete: %w", err)
	}
	return nil
}

func (c *Consumer) Close() error { return nil }

type Publisher struct {
	client   API
	queueURL string
}

func NewPublisher(client API, queueURL string) *Publisher {
	return &Publisher{client: client, queueURL: queueURL}
}

// Publish sends one message body. key is unused on standard queues.
func (p *Publisher) Publish(ctx context.Context, _ string, value []byte) error {
	_, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(value)),
	})
	if err != nil {
		return fmt.Errorf("sqs send: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error { return nil }
