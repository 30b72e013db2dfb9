package mail

import (
	"text/template"

	"gopkg.in/gomail.v2"
)

type PaymentEmailData struct {
	Name        string
	Username    string
	Phone       string
	UserID      int64
	Amount      string
	ProofKind   string
	SubmittedAt string
}

var paymentTemplate = template.Must(template.New("payment").Parse(`New payment proof is waiting for review.

Lead: {{.Name}}{{if .Username}} (@{{.Username}}){{end}}
Telegram ID: {{.UserID}}
Phone: {{.Phone}}
Amount: {{.Amount}} UZS
Proof: {{.ProofKind}}
Submitted: {{.SubmittedAt}}

Approve or reject it from the bot admin panel.
`))

// Dialer is the part of *gomail.Dialer the notifier needs.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}
