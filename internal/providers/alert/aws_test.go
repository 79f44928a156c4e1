package alert

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turfline/leadchat/internal/models"
)

type mockSNS struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

type mockSES struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

func testPayload() Payload {
	return Payload{
		SessionID:    "sess-1",
		Name:         "John Smith",
		Phone:        "608-555-1234",
		PropertyType: "commercial",
		Score:        models.LeadScore{Urgency: 25, ContactInfo: 20, Budget: 15, Total: 60},
		Transcript:   []models.Message{{Role: models.RoleUser, Text: "need mowing asap"}},
	}
}

func TestNotifyPublishesJSONToTopic(t *testing.T) {
	var got *sns.PublishInput
	n := &AWSNotifier{
		sns: &mockSNS{PublishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			got = params
			return &sns.PublishOutput{}, nil
		}},
		topicARN: "arn:aws:sns:us-east-1:123:leads",
	}

	require.NoError(t, n.Notify(context.Background(), testPayload()))
	require.NotNil(t, got)
	assert.Equal(t, "arn:aws:sns:us-east-1:123:leads", *got.TopicArn)

	var p Payload
	require.NoError(t, json.Unmarshal([]byte(*got.Message), &p))
	assert.Equal(t, "sess-1", p.SessionID)
	assert.Equal(t, 60, p.Score.Total)
}

func TestNotifyEmailsSalesInbox(t *testing.T) {
	var got *ses.SendEmailInput
	n := &AWSNotifier{
		ses: &mockSES{SendEmailFunc: func(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			got = params
			return &ses.SendEmailOutput{}, nil
		}},
		fromEmail:  "noreply@turflinelawn.com",
		salesEmail: "sales@turflinelawn.com",
	}

	require.NoError(t, n.Notify(context.Background(), testPayload()))
	require.NotNil(t, got)
	assert.Equal(t, []string{"sales@turflinelawn.com"}, got.Destination.ToAddresses)
	assert.Contains(t, *got.Message.Subject.Data, "John Smith")
	assert.Contains(t, *got.Message.Body.Text.Data, "608-555-1234")
}

func TestNotifyJoinsTransportErrors(t *testing.T) {
	n := &AWSNotifier{
		sns: &mockSNS{PublishFunc: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("sns down")
		}},
		ses: &mockSES{SendEmailFunc: func(context.Context, *ses.SendEmailInput, ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("ses down")
		}},
		topicARN:   "arn:aws:sns:us-east-1:123:leads",
		fromEmail:  "noreply@turflinelawn.com",
		salesEmail: "sales@turflinelawn.com",
	}

	err := n.Notify(context.Background(), testPayload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sns down")
	assert.Contains(t, err.Error(), "ses down")
}
