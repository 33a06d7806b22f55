package accountsvc

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/Mehedi-programming/floating-library/model"
	"github.com/Mehedi-programming/floating-library/notifier"
	userrepo "github.com/Mehedi-programming/floating-library/repository/user"
)

type ErrCode string

const ErrNotFound ErrCode = "NOT_FOUND"

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Filter narrows user listings.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterActive   Filter = "active"
	FilterInactive Filter = "inactive"
)

type Service interface {
	Me(ctx context.Context, userID int64) (*model.User, error)
	PromoteAdmin(ctx context.Context, userID int64) error
	Activate(ctx context.Context, userID int64) error
	Deactivate(ctx context.Context, userID int64) error
	ListUsers(ctx context.Context, f Filter) ([]model.User, error)
	DashboardStats(ctx context.Context) (*userrepo.Stats, error)
}

type service struct {
	ur   userrepo.Repo
	mail notifier.Notifier
	log  *slog.Logger
}

func New(ur userrepo.Repo, mail notifier.Notifier, log *slog.Logger) Service {
	return &service{ur: ur, mail: mail, log: log}
}

func (s *service) Me(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.ur.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, codedError{ErrNotFound}
		}
		return nil, err
	}
	return u, nil
}

func (s *service) PromoteAdmin(ctx context.Context, userID int64) error {
	if err := s.ur.PromoteAdmin(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return codedError{ErrNotFound}
		}
		return err
	}
	return nil
}

func (s *service) Activate(ctx context.Context, userID int64) error {
	return s.setActive(ctx, userID, true, "Account Activation Notice",
		"Your account has been activated. You can now log in and start using our services.")
}

func (s *service) Deactivate(ctx context.Context, userID int64) error {
	return s.setActive(ctx, userID, false, "Account Deactivation Notice",
		"Your account has been deactivated. Please contact support for more information.")
}

func (s *service) setActive(ctx context.Context, userID int64, active bool, subject, body string) error {
	u, err := s.ur.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return codedError{ErrNotFound}
		}
		return err
	}
	if err := s.ur.SetActive(ctx, userID, active); err != nil {
		return err
	}

	go func() {
		if err := s.mail.Send(u.Email, subject, body); err != nil {
			s.log.Error("mail send failed", "to", u.Email, "subject", subject, "err", err)
		}
	}()
	return nil
}

func (s *service) ListUsers(ctx context.Context, f Filter) ([]model.User, error) {
	switch f {
	case FilterActive:
		active := true
		return s.ur.List(ctx, &active)
	case FilterInactive:
		active := false
		return s.ur.List(ctx, &active)
	default:
		return s.ur.List(ctx, nil)
	}
}

func (s *service) DashboardStats(ctx context.Context) (*userrepo.Stats, error) {
	return s.ur.DashboardStats(ctx)
}
