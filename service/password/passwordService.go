package passwordsvc

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/Mehedi-programming/floating-library/model"
	"github.com/Mehedi-programming/floating-library/notifier"
	otprepo "github.com/Mehedi-programming/floating-library/repository/otp"
	userrepo "github.com/Mehedi-programming/floating-library/repository/user"
	"github.com/Mehedi-programming/floating-library/util/hash"
)

// OtpTTL bounds the window in which a reset code is usable.
const OtpTTL = 10 * time.Minute

const otpDigits = 6

// errors used by controllers

type ErrCode string

const (
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrExpired  ErrCode = "OTP_EXPIRED"
	ErrInvalid  ErrCode = "OTP_INVALID"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	// RequestReset issues a fresh code, stores only its hash and mails the
	// plaintext. The plaintext is never returned to the caller.
	RequestReset(ctx context.Context, email string) error
	// Verify is read-only: it does not consume the code.
	Verify(ctx context.Context, email, otp string) error
	// Reset re-validates the code the same way Verify does, then sets the
	// new password and consumes the code in one tx.
	Reset(ctx context.Context, email, otp, newPassword string) error
}

type service struct {
	db   *sql.DB
	ur   userrepo.Repo
	or   otprepo.Repo
	mail notifier.Notifier
	log  *slog.Logger
	now  func() time.Time
}

func New(db *sql.DB, ur userrepo.Repo, or otprepo.Repo, mail notifier.Notifier, log *slog.Logger) Service {
	return &service{db: db, ur: ur, or: or, mail: mail, log: log, now: time.Now}
}

func (s *service) RequestReset(ctx context.Context, email string) error {
	u, err := s.findUser(ctx, email)
	if err != nil {
		return err
	}

	otp, err := generateOtp()
	if err != nil {
		return err
	}
	if err := s.or.Insert(ctx, u.ID, hashOtp(otp), s.now().Add(OtpTTL)); err != nil {
		return err
	}

	go func() {
		body := fmt.Sprintf("Your OTP code is: %s. It will expire in 10 minutes.", otp)
		if err := s.mail.Send(u.Email, "Your OTP Code", body); err != nil {
			s.log.Error("otp mail send failed", "to", u.Email, "err", err)
		}
	}()
	return nil
}

func (s *service) Verify(ctx context.Context, email, otp string) error {
	_, _, err := s.currentOtp(ctx, email, otp)
	return err
}

func (s *service) Reset(ctx context.Context, email, otp, newPassword string) (err error) {
	u, o, err := s.currentOtp(ctx, email, otp)
	if err != nil {
		return err
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

	if err = s.ur.UpdatePassword(ctx, tx, u.ID, hashed); err != nil {
		return err
	}
	if err = s.or.MarkUsed(ctx, tx, o.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// currentOtp resolves the user's most recent unused code and validates
// expiry and hash. Verify and Reset share it so the two paths cannot drift.
func (s *service) currentOtp(ctx context.Context, email, otp string) (*model.User, *model.Otp, error) {
	u, err := s.findUser(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	o, err := s.or.LatestUnused(ctx, u.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, makeErr(ErrNotFound)
		}
		return nil, nil, err
	}
	if s.now().After(o.ExpiredAt) {
		return nil, nil, makeErr(ErrExpired)
	}
	if subtle.ConstantTimeCompare([]byte(o.OtpHash), []byte(hashOtp(otp))) != 1 {
		return nil, nil, makeErr(ErrInvalid)
	}
	return u, o, nil
}

func (s *service) findUser(ctx context.Context, email string) (*model.User, error) {
	u, err := s.ur.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

func generateOtp() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n), nil
}

func hashOtp(otp string) string {
	sum := sha256.Sum256([]byte(otp))
	return hex.EncodeToString(sum[:])
}
