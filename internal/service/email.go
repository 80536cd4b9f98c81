package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"fromprom-backend/internal/logger"
)

type sendGridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

// NewSendGridEmailService builds the SendGrid-backed mailer. An empty
// API key disables sending; notifications are logged and dropped.
func NewSendGridEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridEmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) SendSaleNotification(ctx context.Context, email, name string, promptTitles []string, amount int) error {
	if s.apiKey == "" {
		logger.DebugContext(ctx, "Email disabled, dropping sale notification", "to", email)
		return nil
	}

	subject := "You made a sale on FromProm"
	titleList := strings.Join(promptTitles, ", ")
	plainText := fmt.Sprintf("Your prompt(s) %s sold for %d credits.", titleList, amount)
	htmlContent := fmt.Sprintf(`
		<html>
			<body>
				<h2>You made a sale</h2>
				<p>Your prompt(s) <strong>%s</strong> sold for <strong>%d</strong> credits.</p>
				<p>The credits have been added to your balance.</p>
			</body>
		</html>
	`, titleList, amount)

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(name, email)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	logger.ExternalServiceCall("sendgrid", "send_sale_notification", "to", email)
	response, err := client.Send(message)
	logger.ExternalServiceResult("sendgrid", "send_sale_notification", err, "to", email)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}
