package notifier

import (
	"strconv"

	mail "github.com/go-mail/mail/v2"
)

type smtpNotifier struct {
	dialer *mail.Dialer
	from   string
}

func NewSMTP(host, port, user, pass, from string) Notifier {
	p, err := strconv.Atoi(port)
	if err != nil {
		p = 587
	}
	d := mail.NewDialer(host, p, user, pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	return &smtpNotifier{dialer: d, from: from}
}

func (n *smtpNotifier) Send(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return n.dialer.DialAndSend(m)
}
