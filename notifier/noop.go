package notifier

import "log/slog"

// Noop logs instead of sending. Used when SMTP is not configured (dev) and
// in tests.
type Noop struct{}

func (Noop) Send(to, subject, _ string) error {
	slog.Info("mail skipped (no SMTP configured)", "to", to, "subject", subject)
	return nil
}
