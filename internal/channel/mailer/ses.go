package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/jmehdipour/email-dispatch/internal/config"
)

const charset = "UTF-8"

// SendEmailAPI is the SES v2 operation used by SES.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type SES struct {
	client           SendEmailAPI
	configurationSet string
}

func NewSES(ctx context.Context, cfg config.SESConfig) (*SES, error) {
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

	return NewSESWithClient(sesv2.NewFromConfig(awsCfg), cfg.ConfigurationSet), nil
}

func NewSESWithClient(client SendEmailAPI, configurationSet string) *SES {
	return &SES{client: client, configurationSet: configurationSet}
}

func (s *SES) SendEmail(ctx context.Context, to, from, subject, body string, isHTML bool) error {
	b := &types.Body{}
	if isHTML {
		b.Html = content(body)
	} else {
		b.Text = content(body)
	}
	return s.send(ctx, to, from, subject, b)
}

// SendMimeEmail sends both bodies; SES assembles the multipart/alternative message.
func (s *SES) SendMimeEmail(ctx context.Context, to, from, subject, plainBody, htmlBody string) error {
	return s.send(ctx, to, from, subject, &types.Body{
		Text: content(plainBody),
		Html: content(htmlBody),
	})
}

func (s *SES) send(ctx context.Context, to, from, subject string, body *types.Body) error {
	in := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: content(subject),
				Body:    body,
			},
		},
	}
	if s.configurationSet != "" {
		in.ConfigurationSetName = aws.String(s.configurationSet)
	}

	if _, err := s.client.SendEmail(ctx, in); err != nil {
		return fmt.Errorf("ses send email: %w", err)
	}
	return nil
}

func content(s string) *types.Content {
	return &types.Content{Data: aws.String(s), Charset: aws.String(charset)}
}
