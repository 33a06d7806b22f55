// Package notifier sends transactional email. Delivery is best-effort:
// callers dispatch in a goroutine and log failures, state transitions never
// wait on it.
package notifier

type Notifier interface {
	Send(to, subject, body string) error
}
