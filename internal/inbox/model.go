// Package inbox keeps a local record of every contact submission and
// whether the relay accepted it.
package inbox

import "time"

// Message is one recorded contact submission.
type Message struct {
	ID        int64      `json:"id"`
	Name      string     `json:"nome"`
	Email     string     `json:"email"`
	Phone     string     `json:"telefone"`
	Subject   string     `json:"assunto"`
	Body      string     `json:"mensagem"`
	Delivered bool       `json:"entregue"`
	Relay     string     `json:"relay"`
	SentAt    *time.Time `json:"dataEnvio,omitempty"`
	CreatedAt time.Time  `json:"criadoEm"`
}
