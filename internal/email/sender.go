package email

import (
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/Gori/mininews/internal/config"
)

// Sender delivers the opt-in confirmation mail. It is transactional only;
// newsletter sends go through the (not yet built) send pipeline.
type Sender struct {
	cfg config.SMTPConfig
}

func New(cfg config.SMTPConfig) *Sender {
	return &Sender{cfg: cfg}
}

// Enabled reports whether SMTP is configured; callers skip sending when it
// is not.
func (s *Sender) Enabled() bool {
	return s.cfg.Host != ""
}

func (s *Sender) SendSubscribeConfirmation(to, newsletterName string) error {
	client, err := mail.NewClient(
		s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}

	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to: %w", err)
	}

	msg.Subject(fmt.Sprintf("You're subscribed to %s", newsletterName))

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h1>Welcome!</h1>
			<p>Thank you for subscribing to %s.</p>
		</body>
		</html>
	`, newsletterName)

	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	return nil
}
