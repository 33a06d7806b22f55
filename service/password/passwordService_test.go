package passwordsvc

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/Mehedi-programming/floating-library/model"
	otprepo "github.com/Mehedi-programming/floating-library/repository/otp"
	userrepo "github.com/Mehedi-programming/floating-library/repository/user"
	"github.com/Mehedi-programming/floating-library/util/hash"
)

type userRepoMock struct {
	byEmailFn        func(ctx context.Context, email string) (*model.User, error)
	updatePasswordFn func(ctx context.Context, tx *sql.Tx, id int64, passwordHash string) error
}

var _ userrepo.Repo = (*userRepoMock)(nil)

func (m *userRepoMock) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.byEmailFn(ctx, email)
}

func (m *userRepoMock) UpdatePassword(ctx context.Context, tx *sql.Tx, id int64, passwordHash string) error {
	return m.updatePasswordFn(ctx, tx, id, passwordHash)
}

func (m *userRepoMock) Create(ctx context.Context, u *model.User) error        { return nil }
func (m *userRepoMock) ByID(ctx context.Context, id int64) (*model.User, error) { return nil, nil }
func (m *userRepoMock) UpdateProfile(ctx context.Context, id int64, name, location *string) error {
	return nil
}
func (m *userRepoMock) SetActive(ctx context.Context, id int64, active bool) error { return nil }
func (m *userRepoMock) PromoteAdmin(ctx context.Context, id int64) error           { return nil }
func (m *userRepoMock) List(ctx context.Context, active *bool) ([]model.User, error) {
	return nil, nil
}
func (m *userRepoMock) DashboardStats(ctx context.Context) (*userrepo.Stats, error) {
	return nil, nil
}

type otpRepoMock struct {
	insertFn       func(ctx context.Context, userID int64, otpHash string, expiredAt time.Time) error
	latestUnusedFn func(ctx context.Context, userID int64) (*model.Otp, error)
	markUsedFn     func(ctx context.Context, tx *sql.Tx, id int64) error
}

var _ otprepo.Repo = (*otpRepoMock)(nil)

func (m *otpRepoMock) Insert(ctx context.Context, userID int64, otpHash string, expiredAt time.Time) error {
	return m.insertFn(ctx, userID, otpHash, expiredAt)
}

func (m *otpRepoMock) LatestUnused(ctx context.Context, userID int64) (*model.Otp, error) {
	return m.latestUnusedFn(ctx, userID)
}

func (m *otpRepoMock) MarkUsed(ctx context.Context, tx *sql.Tx, id int64) error {
	return m.markUsedFn(ctx, tx, id)
}

type mailStub struct{ sent chan string }

func (m *mailStub) Send(to, subject, body string) error {
	if m.sent != nil {
		m.sent <- body
	}
	return nil
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func knownUser() *model.User {
	return &model.User{ID: 7, Email: "reader@example.com", IsActive: true}
}

func newService(t *testing.T, ur *userRepoMock, or *otpRepoMock) (*service, sqlmock.Sqlmock, *mailStub) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mail := &mailStub{sent: make(chan string, 1)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := &service{db: db, ur: ur, or: or, mail: mail, log: log, now: func() time.Time { return fixedNow }}
	return s, mock, mail
}

func TestRequestReset_StoresHashNotPlaintext(t *testing.T) {
	var storedHash string
	var storedExpiry time.Time

	ur := &userRepoMock{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			require.Equal(t, "reader@example.com", email)
			return knownUser(), nil
		},
	}
	or := &otpRepoMock{
		insertFn: func(ctx context.Context, userID int64, otpHash string, expiredAt time.Time) error {
			require.Equal(t, int64(7), userID)
			storedHash = otpHash
			storedExpiry = expiredAt
			return nil
		},
	}
	s, _, mail := newService(t, ur, or)

	err := s.RequestReset(context.Background(), "  Reader@Example.COM ")
	require.NoError(t, err)
	require.Len(t, storedHash, 64) // sha256 hex
	require.Equal(t, fixedNow.Add(OtpTTL), storedExpiry)

	select {
	case body := <-mail.sent:
		require.Contains(t, body, "OTP code")
		require.NotContains(t, body, storedHash)
	case <-time.After(time.Second):
		t.Fatal("otp mail was never sent")
	}
}

func TestRequestReset_UnknownEmail(t *testing.T) {
	ur := &userRepoMock{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return nil, sql.ErrNoRows
		},
	}
	s, _, _ := newService(t, ur, &otpRepoMock{})

	err := s.RequestReset(context.Background(), "nobody@example.com")
	require.Equal(t, ErrNotFound, Code(err))
}

func currentCode(expiredAt time.Time) *model.Otp {
	return &model.Otp{ID: 3, UserID: 7, OtpHash: hashOtp("123456"), ExpiredAt: expiredAt}
}

func TestVerify_Success(t *testing.T) {
	ur := &userRepoMock{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) { return knownUser(), nil },
	}
	or := &otpRepoMock{
		latestUnusedFn: func(ctx context.Context, userID int64) (*model.Otp, error) {
			return currentCode(fixedNow.Add(5 * time.Minute)), nil
		},
		markUsedFn: func(ctx context.Context, tx *sql.Tx, id int64) error {
			t.Fatal("verify must not consume the code")
			return nil
		},
	}
	s, _, _ := newService(t, ur, or)

	require.NoError(t, s.Verify(context.Background(), "reader@example.com", "123456"))
}

func TestVerify_Expired(t *testing.T) {
	ur := &userRepoMock{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) { return knownUser(), nil },
	}
	or := &otpRepoMock{
		latestUnusedFn: func(ctx context.Context, userID int64) (*model.Otp, error) {
			return currentCode(fixedNow.Add(-time.Second)), nil
		},
	}
	s, _, _ := newService(t, ur, or)

	err := s.Verify(context.Background(), "reader@example.com", "123456")
	require.Equal(t, ErrExpired, Code(err))
}

func TestVerify_WrongCode(t *testing.T) {
	ur := &userRepoMock{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) { return knownUser(), nil },
	}
	or := &otpRepoMock{
		latestUnusedFn: func(ctx context.Context, userID int64) (*model.Otp, error) {
			return currentCode(fixedNow.Add(5 * time.Minute)), nil
		},
	}
	s, _, _ := newService(t, ur, or)

	err := s.Verify(context.Background(), "reader@example.com", "654321")
	require.Equal(t, ErrInvalid, Code(err))
}

func TestVerify_NoOutstandingCode(t *testing.T) {
	ur := &userRepoMock{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) { return knownUser(), nil },
	}
	or := &otpRepoMock{
		latestUnusedFn: func(ctx context.Context, userID int64) (*model.Otp, error) {
			return nil, sql.ErrNoRows
		},
	}
	s, _, _ := newService(t, ur, or)

	err := s.Verify(context.Background(), "reader@example.com", "123456")
	require.Equal(t, ErrNotFound, Code(err))
}

func TestReset_Success(t *testing.T) {
	var newHash string
	consumed := false

	ur := &userRepoMock{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) { return knownUser(), nil },
		updatePasswordFn: func(ctx context.Context, tx *sql.Tx, id int64, passwordHash string) error {
			require.Equal(t, int64(7), id)
			newHash = passwordHash
			return nil
		},
	}
	or := &otpRepoMock{
		latestUnusedFn: func(ctx context.Context, userID int64) (*model.Otp, error) {
			return currentCode(fixedNow.Add(5 * time.Minute)), nil
		},
		markUsedFn: func(ctx context.Context, tx *sql.Tx, id int64) error {
			require.Equal(t, int64(3), id)
			consumed = true
			return nil
		},
	}
	s, mock, _ := newService(t, ur, or)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := s.Reset(context.Background(), "reader@example.com", "123456", "new-password")
	require.NoError(t, err)
	require.True(t, consumed)
	require.True(t, hash.Check(newHash, "new-password"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReset_RejectsWrongCode(t *testing.T) {
	ur := &userRepoMock{
		byEmailFn: func(ctx context.Context, email string) (*model.User, error) { return knownUser(), nil },
		updatePasswordFn: func(ctx context.Context, tx *sql.Tx, id int64, passwordHash string) error {
			t.Fatal("password must not change on a bad code")
			return nil
		},
	}
	or := &otpRepoMock{
		latestUnusedFn: func(ctx context.Context, userID int64) (*model.Otp, error) {
			return currentCode(fixedNow.Add(5 * time.Minute)), nil
		},
	}
	s, _, _ := newService(t, ur, or)

	err := s.Reset(context.Background(), "reader@example.com", "000000", "new-password")
	require.Equal(t, ErrInvalid, Code(err))
}

func TestGenerateOtp_Format(t *testing.T) {
	for i := 0; i < 20; i++ {
		otp, err := generateOtp()
		require.NoError(t, err)
		require.Len(t, otp, otpDigits)
		for _, r := range otp {
			require.True(t, r >= '0' && r <= '9')
		}
	}
}
