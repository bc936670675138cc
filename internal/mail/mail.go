package mail

import (
	"fmt"
	"log"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Service sends transactional email through SendGrid. With no API key
// configured it degrades to logging the link, which is what local dev wants.
type Service struct {
	client *sendgrid.Client
	from   string
}

func NewService(apiKey, from string) *Service {
	s := &Service{from: from}
	if apiKey != "" {
		s.client = sendgrid.NewSendClient(apiKey)
	}
	return s
}

func (s *Service) SendPasswordReset(to, link string) error {
	if s.client == nil {
		log.Printf("[mail] no SendGrid key configured; reset link for %s: %s", to, link)
		return nil
	}

	message := mail.NewV3Mail()
	message.From = mail.NewEmail("NutriVision", s.from)
	message.Subject = "Reset your NutriVision password"

	personalization := mail.NewPersonalization()
	personalization.To = append(personalization.To, mail.NewEmail("", to))
	message.Personalizations = append(message.Personalizations, personalization)

	body := fmt.Sprintf(
		"We received a request to reset your password.\n\n"+
			"Open this link to choose a new one (valid for one hour):\n%s\n\n"+
			"If you didn't request this, you can ignore this email.\n", link)
	message.Content = append(message.Content, mail.NewContent("text/plain", body))

	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("sending reset email: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
