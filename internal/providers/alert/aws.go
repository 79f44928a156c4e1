package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// AWSNotifier publishes the lead to an SNS topic and, when a sales inbox is
// configured, mails a plain-text summary through SES.
type AWSNotifier struct {
	sns snsAPI
	ses sesAPI

	topicARN   string
	fromEmail  string
	salesEmail string
}

func NewAWSNotifier(ctx context.Context, region, topicARN, fromEmail, salesEmail string) (*AWSNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &AWSNotifier{
		sns:        sns.NewFromConfig(cfg),
		ses:        ses.NewFromConfig(cfg),
		topicARN:   topicARN,
		fromEmail:  fromEmail,
		salesEmail: salesEmail,
	}, nil
}

func (n *AWSNotifier) Notify(ctx context.Context, p Payload) error {
	var errs []error

	if n.topicARN != "" {
		body, err := json.Marshal(p)
		if err != nil {
			return err
		}
		_, err = n.sns.Publish(ctx, &sns.PublishInput{
			TopicArn: aws.String(n.topicARN),
			Subject:  aws.String(fmt.Sprintf("High-value lead (score %d)", p.Score.Total)),
			Message:  aws.String(string(body)),
		})
		if err != nil {
			errs = append(errs, err)
		}
	}

	if n.salesEmail != "" {
		_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
			Source: aws.String(n.fromEmail),
			Destination: &sestypes.Destination{
				ToAddresses: []string{n.salesEmail},
			},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{
					Data: aws.String(fmt.Sprintf("High-value lead: %s (score %d)", displayName(p), p.Score.Total)),
				},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(emailBody(p))},
				},
			},
		})
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func displayName(p Payload) string {
	if p.Name != "" {
		return p.Name
	}
	return "unknown"
}

func emailBody(p Payload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", p.SessionID)
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nPhone: %s\nAddress: %s\n", p.Name, p.Email, p.Phone, p.Address)
	fmt.Fprintf(&b, "Service: %s\nProperty: %s\nTimeline: %s\nPreferred contact: %s\n",
		p.ServiceInterest, p.PropertyType, p.Timeline, p.PreferredContact)
	fmt.Fprintf(&b, "Score: %d (interest %d, urgency %d, contact %d, budget %d)\n\nTranscript:\n",
		p.Score.Total, p.Score.ServiceInterest, p.Score.Urgency, p.Score.ContactInfo, p.Score.Budget)
	for _, m := range p.Transcript {
		fmt.Fprintf(&b, "[%s] %s\n", m.Role, m.Text)
	}
	return b.String()
}
