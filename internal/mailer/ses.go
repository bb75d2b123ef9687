package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/simplebytes/contact-relay/internal/config"
	"github.com/simplebytes/contact-relay/internal/contact"
	"github.com/simplebytes/contact-relay/internal/pkg/logger"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends rendered HTML through AWS SES using the SDK v2.
type SESSender struct {
	fromEmail string
	timeout   time.Duration
	client    sesAPI
}

// NewSESSender creates an SES sender. Static credentials are used when both
// keys are set, otherwise the default AWS credential chain applies.
func NewSESSender(ctx context.Context, sesCfg config.SESConfig, mailCfg config.MailConfig) (*SESSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(sesCfg.Region)}
	if sesCfg.AccessKey != "" && sesCfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(sesCfg.AccessKey, sesCfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newSESSender(sesv2.NewFromConfig(awsCfg), mailCfg), nil
}

func newSESSender(client sesAPI, mailCfg config.MailConfig) *SESSender {
	return &SESSender{
		fromEmail: mailCfg.FromEmail,
		timeout:   mailCfg.Timeout(),
		client:    client,
	}
}

// Send delivers one rendered notification through SES.
func (s *SESSender) Send(ctx context.Context, n contact.Notification) error {
	if n.Templated() {
		return fmt.Errorf("ses: notification %s is templated, expected rendered html", n.Kind)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.fromEmail),
		Destination:      &types.Destination{ToAddresses: []string{n.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(n.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(n.HTML), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("kind"), Value: aws.String(string(n.Kind))},
		},
	}
	if n.SubmissionID != "" {
		input.EmailTags = append(input.EmailTags,
			types.MessageTag{Name: aws.String("submission_id"), Value: aws.String(n.SubmissionID)})
	}
	if n.ReplyTo != "" {
		input.ReplyToAddresses = []string{n.ReplyTo}
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("ses send: %w", err)
	}

	logger.InfoCtx(ctx, "notification sent",
		"transport", config.TransportSES, "kind", string(n.Kind), "to", n.To,
		"submission_id", n.SubmissionID, "message_id", aws.ToString(result.MessageId))
	return nil
}
