package report

import (
	"os"

	"github.com/awiddersheim/thruk-downtimes/internal/config"
	"github.com/awiddersheim/thruk-downtimes/internal/types"
	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Send emails the run summary to the configured recipient. The sendgrid API
// key comes from the SG_API environment variable.
func Send(cfg config.Email, s *types.Summary) error {
	apiKey := os.Getenv("SG_API")
	if apiKey == "" {
		return errors.New("SG_API environment variable is not set")
	}

	subject := cfg.Subject
	if subject == "" {
		subject = "Thruk Downtime Pump Report"
	}
	from := cfg.From
	if from == "" {
		from = cfg.To
	}

	body := Generate(s)
	message := mail.NewSingleEmail(
		mail.NewEmail("Downtime Pump", from),
		subject,
		mail.NewEmail("", cfg.To),
		body,
		body,
	)

	client := sendgrid.NewSendClient(apiKey)
	if _, err := client.Send(message); err != nil {
		return errors.Wrap(err, "send report email")
	}
	return nil
}
