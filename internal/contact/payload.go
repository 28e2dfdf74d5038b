// Package contact relays contact-form submissions to an email relay and
// reports a two-valued outcome.
package contact

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Messages shown to the visitor after a submission.
const (
	SuccessMessage = "Mensagem enviada com sucesso! Entraremos em contato em breve."
	FailureMessage = "Erro ao enviar mensagem. Por favor, tente pelo WhatsApp."
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Optional +55, optional area code, 8 or 9 digit number with optional dash.
	phonePattern = regexp.MustCompile(`^(?:\+55\s?)?(?:\(?\d{2}\)?\s?)?\d{4,5}-?\d{4}$`)
)

// Payload is one contact-form submission.
type Payload struct {
	Name    string    `json:"nome"`
	Email   string    `json:"email"`
	Phone   string    `json:"telefone"`
	Subject string    `json:"assunto"`
	Message string    `json:"mensagem"`
	Consent bool      `json:"aceitePrivacidade"`
	SentAt  time.Time `json:"dataEnvio"`
}

// Outcome is the result of a submission. A failed relay is reported here,
// never as an error.
type Outcome struct {
	Success bool   `json:"sucesso"`
	Message string `json:"mensagem"`
}

func succeeded() Outcome { return Outcome{Success: true, Message: SuccessMessage} }
func failed() Outcome    { return Outcome{Success: false, Message: FailureMessage} }

// FieldError describes every invalid field of a payload, keyed by form
// field name.
type FieldError struct {
	Fields map[string]string
}

func (e *FieldError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range []string{"nome", "email", "telefone", "assunto", "mensagem", "privacidade"} {
		if msg, ok := e.Fields[name]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", name, msg))
		}
	}
	return "invalid contact form: " + strings.Join(parts, "; ")
}

// Validate checks the form the way the site does before sending: name,
// email and message are required, email and phone must be well formed,
// the subject must fit on one line, and the privacy policy must be accepted.
func (p Payload) Validate() error {
	fields := map[string]string{}

	if strings.TrimSpace(p.Name) == "" {
		fields["nome"] = "Este campo é obrigatório"
	}

	email := strings.TrimSpace(p.Email)
	switch {
	case email == "":
		fields["email"] = "Este campo é obrigatório"
	case !ValidEmail(email):
		fields["email"] = "Email inválido"
	}

	if phone := strings.TrimSpace(p.Phone); phone != "" && !ValidPhone(phone) {
		fields["telefone"] = "Telefone inválido"
	}

	if strings.ContainsAny(p.Subject, "\r\n") {
		fields["assunto"] = "Assunto inválido"
	}

	if strings.TrimSpace(p.Message) == "" {
		fields["mensagem"] = "Este campo é obrigatório"
	}

	if !p.Consent {
		fields["privacidade"] = "É necessário aceitar a política de privacidade"
	}

	if len(fields) > 0 {
		return &FieldError{Fields: fields}
	}
	return nil
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPhone reports whether s looks like a Brazilian phone number.
func ValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}
