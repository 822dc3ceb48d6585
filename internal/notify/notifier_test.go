package notify

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proposal-engine/internal/common/logger"
	"proposal-engine/internal/models"
)

// ==========================
// 1. Mocks
// ==========================

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	return &ses.SendEmailOutput{}, m.err
}

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	return &sns.PublishOutput{}, m.err
}

func sampleBundle() *models.ProposalBundle {
	return &models.ProposalBundle{
		ProposalID:     "prop-123",
		RequestID:      "RFP-2026-001",
		WinProbability: 87,
		Costs:          models.CostBreakdown{GrandTotal: 11880, Currency: "USD"},
		Risk:           models.RiskAssessment{Score: 20, Level: models.RiskLow},
		Compliance:     models.ComplianceResult{Status: models.CompliancePass},
		Competitors:    models.CompetitorSnapshot{Position: models.PositionCompetitive},
		Summary:        "Strong technical alignment.",
		Lines: []models.PricingLine{
			{ItemID: "item-1", ModelName: "TR-11K-100", Quantity: 10, LineTotal: 10000, LeadTimeNote: "2-3 week delivery"},
		},
	}
}

// ==========================
// 2. Channel Selection
// ==========================

func TestAnnounce_BothChannels(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	notifier := NewNotifierWithClients(Config{
		FromEmail:  "proposals@example.com",
		Recipients: []string{"sales@example.com"},
		TopicARN:   "arn:aws:sns:us-east-1:1:proposals",
	}, sesMock, snsMock, logger.NewTestLogger(t))

	notifier.Announce(context.Background(), sampleBundle())

	require.Len(t, sesMock.inputs, 1)
	email := sesMock.inputs[0]
	assert.Equal(t, []string{"sales@example.com"}, email.Destination.ToAddresses)
	assert.Contains(t, *email.Message.Subject.Data, "prop-123")
	assert.Contains(t, *email.Message.Body.Text.Data, "11880.00 USD")
	assert.Contains(t, *email.Message.Body.Text.Data, "TR-11K-100")

	require.Len(t, snsMock.inputs, 1)
	assert.Contains(t, *snsMock.inputs[0].Message, "winProbability=87")
}

func TestAnnounce_EmailOnly(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	notifier := NewNotifierWithClients(Config{
		FromEmail:  "proposals@example.com",
		Recipients: []string{"sales@example.com"},
	}, sesMock, snsMock, logger.NewTestLogger(t))

	notifier.Announce(context.Background(), sampleBundle())

	assert.Len(t, sesMock.inputs, 1)
	assert.Empty(t, snsMock.inputs, "SNS must stay silent without a topic ARN")
}

func TestAnnounce_ChannelFailureDoesNotPanic(t *testing.T) {
	sesMock := &mockSES{err: assert.AnError}
	snsMock := &mockSNS{err: assert.AnError}
	notifier := NewNotifierWithClients(Config{
		FromEmail:  "proposals@example.com",
		Recipients: []string{"sales@example.com"},
		TopicARN:   "arn:aws:sns:us-east-1:1:proposals",
	}, sesMock, snsMock, logger.NewTestLogger(t))

	assert.NotPanics(t, func() {
		notifier.Announce(context.Background(), sampleBundle())
	})
}
