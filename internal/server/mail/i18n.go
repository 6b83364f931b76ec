package mail

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	msgResetRequestSubject = "Password reset request"
	msgResetRequestHeader  = "Reset your password"
	msgResetRequestBody    = "We received a request to reset the password of your account. Use the link below to get a new one."
	msgResetRequestAction  = "Reset password"
	msgNewPasswordSubject  = "Your password has been changed"
	msgNewPasswordHeader   = "New password"
	msgNewPasswordBody     = "Your password has been reset. Your new password is:"
	msgGreeting            = "Hello %s,"
	msgFooter              = "This message was sent automatically, please do not reply."
)

var polish = map[string]string{
	msgResetRequestSubject: "Prośba o zresetowanie hasła",
	msgResetRequestHeader:  "Zresetuj hasło",
	msgResetRequestBody:    "Otrzymaliśmy prośbę o zresetowanie hasła do Twojego konta. Użyj poniższego linku, aby otrzymać nowe.",
	msgResetRequestAction:  "Zresetuj hasło",
	msgNewPasswordSubject:  "Twoje hasło zostało zmienione",
	msgNewPasswordHeader:   "Nowe hasło",
	msgNewPasswordBody:     "Twoje hasło zostało zresetowane. Nowe hasło to:",
	msgGreeting:            "Witaj %s,",
	msgFooter:              "Ta wiadomość została wysłana automatycznie, prosimy na nią nie odpowiadać.",
}

// Translator renders message keys in one of the supported languages.
type Translator struct {
	catalog catalog.Catalog
	matcher language.Matcher
}

func NewTranslator() (*Translator, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, text := range polish {
		if err := b.SetString(language.Polish, key, text); err != nil {
			return nil, err
		}
		if err := b.SetString(language.English, key, key); err != nil {
			return nil, err
		}
	}
	return &Translator{
		catalog: b,
		matcher: language.NewMatcher([]language.Tag{language.English, language.Polish}),
	}, nil
}

// Printer returns a printer for lang. Unknown languages get English.
func (t *Translator) Printer(lang string) *message.Printer {
	tag, _, _ := t.matcher.Match(language.Make(lang))
	base, _ := tag.Base()
	return message.NewPrinter(language.Make(base.String()), message.Catalog(t.catalog))
}
