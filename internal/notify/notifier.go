// Package notify announces finished proposals to the sales team over SES
// email and an SNS topic. Delivery is best-effort and never blocks a run.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"proposal-engine/internal/common/logger"
	"proposal-engine/internal/models"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Config selects the channels. Empty Recipients disables email; empty
// TopicARN disables SNS.
type Config struct {
	FromEmail  string
	Recipients []string
	TopicARN   string
	AWSRegion  string
}

type Notifier struct {
	config    Config
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

func NewNotifier(ctx context.Context, cfg Config, log logger.Logger) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Notifier{
		config:    cfg,
		sesClient: ses.NewFromConfig(awsCfg),
		snsClient: sns.NewFromConfig(awsCfg),
		logger:    log.With(map[string]interface{}{"component": "notify"}),
	}, nil
}

// NewNotifierWithClients injects the AWS clients; for tests.
func NewNotifierWithClients(cfg Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		config:    cfg,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.With(map[string]interface{}{"component": "notify"}),
	}
}

// Announce delivers the proposal summary over every configured channel.
// Channel failures are logged and collected; a partial delivery is not an
// error for the caller.
func (n *Notifier) Announce(ctx context.Context, bundle *models.ProposalBundle) {
	subject := fmt.Sprintf("Proposal %s ready (win probability %d%%)", bundle.ProposalID, bundle.WinProbability)
	body := renderBody(bundle)

	if len(n.config.Recipients) > 0 {
		if err := n.sendEmail(ctx, subject, body); err != nil {
			n.logger.Warn("proposal email failed", map[string]interface{}{
				"proposalId": bundle.ProposalID,
				"error":      err.Error(),
			})
		}
	}

	if n.config.TopicARN != "" {
		if err := n.publish(ctx, subject, bundle); err != nil {
			n.logger.Warn("proposal SNS publish failed", map[string]interface{}{
				"proposalId": bundle.ProposalID,
				"error":      err.Error(),
			})
		}
	}
}

func (n *Notifier) sendEmail(ctx context.Context, subject, body string) error {
	toAddresses := make([]string, len(n.config.Recipients))
	copy(toAddresses, n.config.Recipients)

	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: toAddresses,
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.FromEmail),
	})
	return err
}

func (n *Notifier) publish(ctx context.Context, subject string, bundle *models.ProposalBundle) error {
	message := fmt.Sprintf("proposalId=%s requestId=%s winProbability=%d grandTotal=%.2f %s",
		bundle.ProposalID, bundle.RequestID, bundle.WinProbability, bundle.Costs.GrandTotal, bundle.Costs.Currency)

	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.TopicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
	})
	return err
}

func renderBody(bundle *models.ProposalBundle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Proposal %s for request %s\n\n", bundle.ProposalID, bundle.RequestID)
	fmt.Fprintf(&b, "Grand total: %.2f %s\n", bundle.Costs.GrandTotal, bundle.Costs.Currency)
	fmt.Fprintf(&b, "Win probability: %d%%\n", bundle.WinProbability)
	fmt.Fprintf(&b, "Risk: %s (%.0f)\n", bundle.Risk.Level, bundle.Risk.Score)
	fmt.Fprintf(&b, "Compliance: %s\n", bundle.Compliance.Status)
	fmt.Fprintf(&b, "Price position: %s\n\n", bundle.Competitors.Position)
	fmt.Fprintf(&b, "%s\n", bundle.Summary)

	if len(bundle.Lines) > 0 {
		b.WriteString("\nLine items:\n")
		for _, line := range bundle.Lines {
			fmt.Fprintf(&b, "  %s: %s x%d = %.2f (%s)\n",
				line.ItemID, line.ModelName, line.Quantity, line.LineTotal, line.LeadTimeNote)
		}
	}
	return b.String()
}
