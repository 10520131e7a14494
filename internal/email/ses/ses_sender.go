package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"baucheck/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed ReportSender.
func NewSESSender(region, fromAddress, fromName string) (port.ReportSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendComplianceReport(ctx context.Context, toEmail, projectName, reportURL string) error {
	subject := fmt.Sprintf("Prüfbericht für %s", projectName)
	htmlBody := buildReportHTML(projectName, reportURL)
	textBody := fmt.Sprintf("Guten Tag,\n\ndie Prüfung Ihres Bauvorhabens \"%s\" gegen den Bebauungsplan ist abgeschlossen. Den Bericht finden Sie hier:\n%s\n\nDer Link ist zeitlich begrenzt gültig.\n\nIhr BauCheck Team", projectName, reportURL)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildReportHTML(projectName, reportURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Ihr Prüfbericht ist fertig</h2>
  <p>Guten Tag,</p>
  <p>die Prüfung Ihres Bauvorhabens <strong>%s</strong> gegen den Bebauungsplan ist abgeschlossen. Den vollständigen Bericht können Sie hier herunterladen:</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Bericht herunterladen</a>
  </p>
  <p>Oder kopieren Sie diesen Link in Ihren Browser:</p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <p style="color: #999; font-size: 12px;">Der Link ist zeitlich begrenzt gültig.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">BauCheck - Automatisierte Bauantragsprüfung</p>
</body>
</html>`, projectName, reportURL, reportURL)
}
