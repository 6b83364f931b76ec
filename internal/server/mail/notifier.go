// Package mail sends the account mails: the password reset link and the
// newly generated password. Bodies are HTML templates embedded in the
// binary and translated into the site language.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/dmitrijs2005/cmskeeper/internal/logging"
	"github.com/dmitrijs2005/cmskeeper/internal/server/models"
	gomail "github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	templateResetRequest = "resetPasswordRequest"
	templateNewPassword  = "resetPassword"
)

// Sender delivers composed messages. *gomail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// LanguageSource supplies the site language for outgoing mail.
type LanguageSource interface {
	Language(ctx context.Context) string
}

type mailData struct {
	Lang     string
	Subject  string
	Header   string
	Greeting string
	Body     string
	Action   string
	URL      string
	Password string
	Footer   string
}

type Notifier struct {
	sender     Sender
	from       string
	lang       LanguageSource
	translator *Translator
	templates  map[string]*template.Template
	log        logging.Logger
}

func NewNotifier(sender Sender, from string, lang LanguageSource, log logging.Logger) (*Notifier, error) {
	translator, err := NewTranslator()
	if err != nil {
		return nil, fmt.Errorf("mail catalog: %w", err)
	}

	templates := map[string]*template.Template{}
	for _, name := range []string{templateResetRequest, templateNewPassword} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse mail template %s: %w", name, err)
		}
		templates[name] = t
	}

	return &Notifier{
		sender:     sender,
		from:       from,
		lang:       lang,
		translator: translator,
		templates:  templates,
		log:        log.With("component", "mail"),
	}, nil
}

// SendResetRequest mails the user the link that redeems a reset capsule.
func (n *Notifier) SendResetRequest(ctx context.Context, user *models.User, url string) error {
	lang := n.lang.Language(ctx)
	p := n.translator.Printer(lang)
	return n.send(ctx, user, templateResetRequest, mailData{
		Lang:     lang,
		Subject:  p.Sprintf(msgResetRequestSubject),
		Header:   p.Sprintf(msgResetRequestHeader),
		Greeting: p.Sprintf(msgGreeting, user.Name),
		Body:     p.Sprintf(msgResetRequestBody),
		Action:   p.Sprintf(msgResetRequestAction),
		URL:      url,
		Footer:   p.Sprintf(msgFooter),
	})
}

// SendNewPassword mails the user their new plaintext password.
func (n *Notifier) SendNewPassword(ctx context.Context, user *models.User, password string) error {
	lang := n.lang.Language(ctx)
	p := n.translator.Printer(lang)
	return n.send(ctx, user, templateNewPassword, mailData{
		Lang:     lang,
		Subject:  p.Sprintf(msgNewPasswordSubject),
		Header:   p.Sprintf(msgNewPasswordHeader),
		Greeting: p.Sprintf(msgGreeting, user.Name),
		Body:     p.Sprintf(msgNewPasswordBody),
		Password: password,
		Footer:   p.Sprintf(msgFooter),
	})
}

func (n *Notifier) render(name string, data mailData) (string, error) {
	var buf bytes.Buffer
	if err := n.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("render mail template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (n *Notifier) send(ctx context.Context, user *models.User, name string, data mailData) error {
	body, err := n.render(name, data)
	if err != nil {
		return err
	}

	msg := gomail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := msg.AddToFormat(user.Name, user.Email); err != nil {
		return fmt.Errorf("mail to: %w", err)
	}
	msg.Subject(data.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, body)

	if err := n.sender.DialAndSendWithContext(ctx, msg); err != nil {
		n.log.Error(ctx, "mail delivery failed", "template", name, "user_id", user.ID, "error", err)
		return fmt.Errorf("send mail: %w", err)
	}
	n.log.Info(ctx, "mail sent", "template", name, "user_id", user.ID)
	return nil
}
