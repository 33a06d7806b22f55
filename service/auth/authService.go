package authsvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Mehedi-programming/floating-library/model"
	"github.com/Mehedi-programming/floating-library/notifier"
	userrepo "github.com/Mehedi-programming/floating-library/repository/user"
	"github.com/Mehedi-programming/floating-library/util/hash"
	jwtutil "github.com/Mehedi-programming/floating-library/util/jwt"
)

// errors used by controllers

type ErrCode string

const (
	ErrEmailTaken    ErrCode = "EMAIL_TAKEN"
	ErrBadInput      ErrCode = "BAD_INPUT"
	ErrInvalidCreds  ErrCode = "INVALID_CREDENTIALS"
	ErrInactive      ErrCode = "ACCOUNT_INACTIVE"
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrWrongPassword ErrCode = "WRONG_PASSWORD"
)

type codedError struct {
	code ErrCode
	err  error
}

func (e codedError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.code, e.err)
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode    { return e.code }
func (e codedError) Unwrap() error    { return e.err }
func makeErr(c ErrCode) error         { return codedError{code: c} }
func wrap(c ErrCode, msg string) error { return codedError{code: c, err: errors.New(msg)} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	// SignUp creates an inactive account; an admin activates it later.
	SignUp(ctx context.Context, req model.SignUpReq) (*model.User, error)
	SignIn(ctx context.Context, req model.SignInReq) (*model.User, string, error)
	EditProfile(ctx context.Context, userID int64, req model.UpdateProfileReq) error
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
}

type service struct {
	db     *sql.DB
	ur     userrepo.Repo
	mail   notifier.Notifier
	log    *slog.Logger
	secret string
}

func New(db *sql.DB, ur userrepo.Repo, mail notifier.Notifier, log *slog.Logger, secret string) Service {
	return &service{db: db, ur: ur, mail: mail, log: log, secret: secret}
}

func (s *service) SignUp(ctx context.Context, req model.SignUpReq) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Name) == "" || len(req.Password) < 6 {
		return nil, makeErr(ErrBadInput)
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Location:     strings.TrimSpace(req.Location),
		PasswordHash: hashed,
		Role:         model.RoleUser,
	}

	if err := s.ur.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, derr
		}
		return nil, err
	}

	s.notify(u.Email, "Welcome to Floating Library",
		"Thank you for registering with Floating Library. Your account is under review and will be activated soon.")
	return u, nil
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		cn := strings.ToLower(pgErr.ConstraintName)
		msg := strings.ToLower(pgErr.Message)

		if strings.Contains(cn, "users_email") || strings.Contains(msg, "email") {
			return makeErr(ErrEmailTaken)
		}
		return makeErr(ErrBadInput)
	}
	return nil
}

func (s *service) SignIn(ctx context.Context, req model.SignInReq) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, "", makeErr(ErrBadInput)
	}

	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", makeErr(ErrInvalidCreds)
		}
		return nil, "", err
	}
	if !u.IsActive {
		return nil, "", wrap(ErrInactive, "account awaiting admin approval")
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", makeErr(ErrInvalidCreds)
	}

	token, err := jwtutil.Issue(s.secret, u.ID, u.Role, 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) EditProfile(ctx context.Context, userID int64, req model.UpdateProfileReq) error {
	if req.Name == nil && req.Location == nil {
		return makeErr(ErrBadInput)
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return makeErr(ErrBadInput)
	}
	if err := s.ur.UpdateProfile(ctx, userID, req.Name, req.Location); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *service) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (err error) {
	u, err := s.ur.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if !hash.Check(u.PasswordHash, oldPassword) {
		return makeErr(ErrWrongPassword)
	}

	hashed, err := hash.HashPassword(newPassword)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.ur.UpdatePassword(ctx, tx, userID, hashed); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) notify(to, subject, body string) {
	go func() {
		if err := s.mail.Send(to, subject, body); err != nil {
			s.log.Error("mail send failed", "to", to, "subject", subject, "err", err)
		}
	}()
}
