package mail

import (
	gomail "github.com/wneessen/go-mail"
)

type SMTPOptions struct {
	Host     string
	Port     int
	User     string
	Password string
}

// NewSMTPClient builds an SMTP client. STARTTLS is used when the server
// offers it; authentication is enabled only when a user is configured.
func NewSMTPClient(opts SMTPOptions) (*gomail.Client, error) {
	clientOpts := []gomail.Option{
		gomail.WithPort(opts.Port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if opts.User != "" {
		clientOpts = append(clientOpts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(opts.User),
			gomail.WithPassword(opts.Password),
		)
	}
	return gomail.NewClient(opts.Host, clientOpts...)
}
