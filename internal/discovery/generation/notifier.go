// internal/discovery/generation/notifier.go
package generation

import (
	"context"
	"fmt"

	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	awsclient "contact-discovery/internal/common/aws"
	"contact-discovery/internal/common/config"
	"contact-discovery/internal/common/errors"
	"contact-discovery/internal/common/logger"
	"contact-discovery/internal/models"
)

// Notifier reports batch completion to interested operators. Delivery is
// best-effort and never blocks a batch.
type Notifier interface {
	BatchCompleted(ctx context.Context, result *models.GenerationResult) error
}

// AWSNotifier delivers batch notifications over SES email and SNS SMS.
type AWSNotifier struct {
	ses    *awsclient.SESClient
	sns    *awsclient.SNSClient
	config config.NotificationConfig
	logger logger.Logger
}

func NewAWSNotifier(sesClient *awsclient.SESClient, snsClient *awsclient.SNSClient, cfg config.NotificationConfig, log logger.Logger) *AWSNotifier {
	return &AWSNotifier{
		ses:    sesClient,
		sns:    snsClient,
		config: cfg,
		logger: log.WithFields(map[string]interface{}{"component": "batch-notifier"}),
	}
}

func (n *AWSNotifier) BatchCompleted(ctx context.Context, result *models.GenerationResult) error {
	message := fmt.Sprintf(
		"Query generation batch %s finished with status %s: %d queries, average score %.2f",
		result.BatchID, result.Status, len(result.Queries), result.Metrics.AverageScore,
	)

	if n.config.Email.Enabled && n.ses != nil && n.config.Email.ToEmail != "" {
		subject := fmt.Sprintf("Contact discovery batch %s %s", result.BatchID, result.Status)
		_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
			Source:      aws.String(n.config.Email.FromEmail),
			Destination: &sestypes.Destination{ToAddresses: []string{n.config.Email.ToEmail}},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(message)},
				},
			},
		})
		if err != nil {
			return errors.NewNotificationSendFailedError("email", err)
		}
	}

	if n.config.SMS.Enabled && n.sns != nil && n.config.SMS.ToNumber != "" {
		_, err := n.sns.Publish(ctx, &sns.PublishInput{
			Message:     aws.String(message),
			PhoneNumber: aws.String(n.config.SMS.ToNumber),
		})
		if err != nil {
			return errors.NewNotificationSendFailedError("sms", err)
		}
	}

	n.logger.Debug("batch notification sent", map[string]interface{}{
		"batchId": result.BatchID,
		"status":  result.Status,
	})
	return nil
}
