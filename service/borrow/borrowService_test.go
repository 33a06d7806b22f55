package borrowsvc

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
	borrowrepo "github.com/Mehedi-programming/floating-library/repository/borrow"
)

type mockRepo struct {
	lockBookFn        func(ctx context.Context, tx *sql.Tx, bookID int64) (*borrowrepo.LockedBook, error)
	countAcceptedByFn func(ctx context.Context, tx *sql.Tx, requesterID int64) (int64, error)
	hasAcceptedFn     func(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error)
	hasPendingFn      func(ctx context.Context, tx *sql.Tx, requesterID, bookID int64) (bool, error)
	insertFn          func(ctx context.Context, tx *sql.Tx, requesterID, ownerID, bookID int64) (*model.BorrowRequest, error)
	getForUpdateFn    func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.BorrowRequest, error)
	setStatusFn       func(ctx context.Context, tx *sql.Tx, requestID int64, status model.BorrowStatus) error
	markAcceptedFn    func(ctx context.Context, tx *sql.Tx, requestID int64, acceptedAt, returnDate time.Time) error
	markReturnedFn    func(ctx context.Context, tx *sql.Tx, requestID int64, isLate bool) error
	setBorrowerFn     func(ctx context.Context, tx *sql.Tx, userID int64, borrower bool) error
	setLenderFn       func(ctx context.Context, tx *sql.Tx, userID int64, lender bool) error
	listByRequesterFn func(ctx context.Context, requesterID int64) ([]model.BorrowRequest, error)
	listByOwnerFn     func(ctx context.Context, ownerID int64) ([]model.BorrowRequest, error)
	countAcceptedFn   func(ctx context.Context, requesterID int64) (int64, error)
	countLentFn       func(ctx context.Context, ownerID int64) (int64, error)
}

var _ borrowrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) LockBook(ctx context.Context, tx *sql.Tx, bookID int64) (*borrowrepo.LockedBook, error) {
	return m.lockBookFn(ctx, tx, bookID)
}

func (m *mockRepo) CountAcceptedByRequester(ctx context.Context, tx *sql.Tx, requesterID int64) (int64, error) {
	if m.countAcceptedByFn == nil {
		return 0, nil
	}
	return m.countAcceptedByFn(ctx, tx, requesterID)
}

func (m *mockRepo) HasAcceptedForBook(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
	if m.hasAcceptedFn == nil {
		return false, nil
	}
	return m.hasAcceptedFn(ctx, tx, bookID)
}

func (m *mockRepo) HasPending(ctx context.Context, tx *sql.Tx, requesterID, bookID int64) (bool, error) {
	if m.hasPendingFn == nil {
		return false, nil
	}
	return m.hasPendingFn(ctx, tx, requesterID, bookID)
}

func (m *mockRepo) Insert(ctx context.Context, tx *sql.Tx, requesterID, ownerID, bookID int64) (*model.BorrowRequest, error) {
	return m.insertFn(ctx, tx, requesterID, ownerID, bookID)
}

func (m *mockRepo) GetForUpdate(ctx context.Context, tx *sql.Tx, requestID int64) (*model.BorrowRequest, error) {
	return m.getForUpdateFn(ctx, tx, requestID)
}

func (m *mockRepo) SetStatus(ctx context.Context, tx *sql.Tx, requestID int64, status model.BorrowStatus) error {
	return m.setStatusFn(ctx, tx, requestID, status)
}

func (m *mockRepo) MarkAccepted(ctx context.Context, tx *sql.Tx, requestID int64, acceptedAt, returnDate time.Time) error {
	return m.markAcceptedFn(ctx, tx, requestID, acceptedAt, returnDate)
}

func (m *mockRepo) MarkReturned(ctx context.Context, tx *sql.Tx, requestID int64, isLate bool) error {
	return m.markReturnedFn(ctx, tx, requestID, isLate)
}

func (m *mockRepo) SetBorrowerFlag(ctx context.Context, tx *sql.Tx, userID int64, borrower bool) error {
	if m.setBorrowerFn == nil {
		return nil
	}
	return m.setBorrowerFn(ctx, tx, userID, borrower)
}

func (m *mockRepo) SetLenderFlag(ctx context.Context, tx *sql.Tx, userID int64, lender bool) error {
	if m.setLenderFn == nil {
		return nil
	}
	return m.setLenderFn(ctx, tx, userID, lender)
}

func (m *mockRepo) ListByRequester(ctx context.Context, requesterID int64) ([]model.BorrowRequest, error) {
	return m.listByRequesterFn(ctx, requesterID)
}

func (m *mockRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.BorrowRequest, error) {
	return m.listByOwnerFn(ctx, ownerID)
}

func (m *mockRepo) CountAccepted(ctx context.Context, requesterID int64) (int64, error) {
	return m.countAcceptedFn(ctx, requesterID)
}

func (m *mockRepo) CountLent(ctx context.Context, ownerID int64) (int64, error) {
	return m.countLentFn(ctx, ownerID)
}

type mailStub struct{ sent chan string }

func (m *mailStub) Send(to, subject, body string) error {
	if m.sent != nil {
		m.sent <- to
	}
	return nil
}

func newService(t *testing.T, r *mockRepo, now time.Time) (*service, sqlmock.Sqlmock, *mailStub) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mail := &mailStub{sent: make(chan string, 1)}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := &service{db: db, r: r, mail: mail, log: log, now: func() time.Time { return now }}
	return s, mock, mail
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func availableBook(ownerID int64) *borrowrepo.LockedBook {
	return &borrowrepo.LockedBook{ID: 10, OwnerID: ownerID, OwnerEmail: "owner@example.com", Title: "Dune"}
}

// --- Create ---

func TestCreate_Success(t *testing.T) {
	m := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (*borrowrepo.LockedBook, error) {
			return availableBook(2), nil
		},
		insertFn: func(ctx context.Context, tx *sql.Tx, requesterID, ownerID, bookID int64) (*model.BorrowRequest, error) {
			require.Equal(t, int64(1), requesterID)
			require.Equal(t, int64(2), ownerID)
			require.Equal(t, int64(10), bookID)
			return &model.BorrowRequest{
				ID: 99, RequesterID: requesterID, OwnerID: ownerID, BookID: bookID,
				Status: model.BorrowPending, CreatedAt: fixedNow,
			}, nil
		},
	}
	s, mock, mail := newService(t, m, fixedNow)
	mock.ExpectBegin()
	mock.ExpectCommit()

	br, err := s.Create(context.Background(), 1, "reader@example.com", 10)
	require.NoError(t, err)
	require.Equal(t, model.BorrowPending, br.Status)
	require.Equal(t, "Dune", br.BookTitle)

	select {
	case to := <-mail.sent:
		require.Equal(t, "owner@example.com", to)
	case <-time.After(time.Second):
		t.Fatal("owner was never notified")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_OwnBook(t *testing.T) {
	m := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (*borrowrepo.LockedBook, error) {
			return availableBook(1), nil
		},
	}
	s, mock, _ := newService(t, m, fixedNow)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Create(context.Background(), 1, "reader@example.com", 10)
	require.Error(t, err)
	require.Equal(t, ErrSelfBorrow, Code(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_BookMissing(t *testing.T) {
	m := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (*borrowrepo.LockedBook, error) {
			return nil, sql.ErrNoRows
		},
	}
	s, mock, _ := newService(t, m, fixedNow)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Create(context.Background(), 1, "reader@example.com", 10)
	require.Equal(t, ErrBookNotFound, Code(err))
}

func TestCreate_BorrowLimit(t *testing.T) {
	m := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (*borrowrepo.LockedBook, error) {
			return availableBook(2), nil
		},
		countAcceptedByFn: func(ctx context.Context, tx *sql.Tx, requesterID int64) (int64, error) {
			return model.MaxActiveBorrows, nil
		},
	}
	s, mock, _ := newService(t, m, fixedNow)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Create(context.Background(), 1, "reader@example.com", 10)
	require.Equal(t, ErrBorrowLimit, Code(err))
}

func TestCreate_BookAlreadyLent(t *testing.T) {
	m := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (*borrowrepo.LockedBook, error) {
			return availableBook(2), nil
		},
		hasAcceptedFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
			return true, nil
		},
	}
	s, mock, _ := newService(t, m, fixedNow)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Create(context.Background(), 1, "reader@example.com", 10)
	require.Equal(t, ErrUnavailable, Code(err))
}

func TestCreate_DuplicatePending(t *testing.T) {
	m := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (*borrowrepo.LockedBook, error) {
			return availableBook(2), nil
		},
		hasPendingFn: func(ctx context.Context, tx *sql.Tx, requesterID, bookID int64) (bool, error) {
			return true, nil
		},
	}
	s, mock, _ := newService(t, m, fixedNow)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Create(context.Background(), 1, "reader@example.com", 10)
	require.Equal(t, ErrDuplicate, Code(err))
}

// --- Accept ---

func pendingRequest() *model.BorrowRequest {
	return &model.BorrowRequest{
		ID: 99, RequesterID: 1, OwnerID: 2, BookID: 10, Status: model.BorrowPending,
	}
}

func TestAccept_Success(t *testing.T) {
	var gotReturn time.Time
	borrowerSet, lenderSet := false, false

	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.BorrowRequest, error) {
			return pendingRequest(), nil
		},
		lockBookFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (*borrowrepo.LockedBook, error) {
			return availableBook(2), nil
		},
		markAcceptedFn: func(ctx context.Context, tx *sql.Tx, requestID int64, acceptedAt, returnDate time.Time) error {
			require.Equal(t, fixedNow, acceptedAt)
			gotReturn = returnDate
			return nil
		},
		setBorrowerFn: func(ctx context.Context, tx *sql.Tx, userID int64, borrower bool) error {
			require.Equal(t, int64(1), userID)
			require.True(t, borrower)
			borrowerSet = true
			return nil
		},
		setLenderFn: func(ctx context.Context, tx *sql.Tx, userID int64, lender bool) error {
			require.Equal(t, int64(2), userID)
			require.True(t, lender)
			lenderSet = true
			return nil
		},
	}
	s, mock, _ := newService(t, m, fixedNow)
	mock.ExpectBegin()
	mock.ExpectCommit()

	br, err := s.Accept(context.Background(), 2, 99)
	require.NoError(t, err)
	require.Equal(t, model.BorrowAccepted, br.Status)
	require.Equal(t, fixedNow.Add(model.BorrowDays*24*time.Hour), gotReturn)
	require.Equal(t, gotReturn, *br.ReturnDate)
	require.True(t, borrowerSet)
	require.True(t, lenderSet)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAccept_NotOwner(t *testing.T) {
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.BorrowRequest, error) {
			return pendingRequest(), nil
		},
	}
	s, mock, _ := newService(t, m, fixedNow)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Accept(context.Background(), 7, 99)
	require.Equal(t, ErrNotOwner, Code(err))
}

func TestAccept_BookTakenMeanwhile(t *testing.T) {
	// A second owner accept for the same book must fail once the first won.
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.BorrowRequest, error) {
			return pendingRequest(), nil
		},
		lockBookFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (*borrowrepo.LockedBook, error) {
			return availableBook(2), nil
		},
		hasAcceptedFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (bool, error) {
			return true, nil
		},
	}
	s, mock, _ := newService(t, m, fixedNow)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Accept(context.Background(), 2, 99)
	require.Equal(t, ErrUnavailable, Code(err))
}

func TestAccept_NotPending(t *testing.T) {
	for _, st := range []model.BorrowStatus{
		model.BorrowAccepted, model.BorrowRejected, model.BorrowCancelled, model.BorrowReturned,
	} {
		m := &mockRepo{
			getForUpdateFn: func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.BorrowRequest, error) {
				br := pendingRequest()
				br.Status = st
				return br, nil
			},
		}
		s, mock, _ := newService(t, m, fixedNow)
		mock.ExpectBegin()
		mock.ExpectRollback()

		_, err := s.Accept(context.Background(), 2, 99)
		require.Equal(t, ErrNotPending, Code(err), "status %s", st)
	}
}

// --- Cancel / Reject ---

func TestCancel_Success(t *testing.T) {
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.BorrowRequest, error) {
			return pendingRequest(), nil
		},
		setStatusFn: func(ctx context.Context, tx *sql.Tx, requestID int64, status model.BorrowStatus) error {
			require.Equal(t, model.BorrowCancelled, status)
			return nil
		},
	}
	s, mock, _ := newService(t, m, fixedNow)
	mock.ExpectBegin()
	mock.ExpectCommit()

	br, err := s.Cancel(context.Background(), 1, 99)
	require.NoError(t, err)
	require.Equal(t, model.BorrowCancelled, br.Status)
}

func TestCancel_NotRequester(t *testing.T) {
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.BorrowRequest, error) {
			return pendingRequest(), nil
		},
	}
	s, mock, _ := newService(t, m, fixedNow)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Cancel(context.Background(), 2, 99)
	require.Equal(t, ErrNotRequester, Code(err))
}

func TestReject_Success(t *testing.T) {
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.BorrowRequest, error) {
			return pendingRequest(), nil
		},
		setStatusFn: func(ctx context.Context, tx *sql.Tx, requestID int64, status model.BorrowStatus) error {
			require.Equal(t, model.BorrowRejected, status)
			return nil
		},
	}
	s, mock, _ := newService(t, m, fixedNow)
	mock.ExpectBegin()
	mock.ExpectCommit()

	br, err := s.Reject(context.Background(), 2, 99)
	require.NoError(t, err)
	require.Equal(t, model.BorrowRejected, br.Status)
}

func TestRequestMissing(t *testing.T) {
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.BorrowRequest, error) {
			return nil, sql.ErrNoRows
		},
	}
	s, mock, _ := newService(t, m, fixedNow)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Reject(context.Background(), 2, 99)
	require.Equal(t, ErrRequestNotFound, Code(err))
}

// --- Return ---

func acceptedRequest(returnDate time.Time) *model.BorrowRequest {
	br := pendingRequest()
	br.Status = model.BorrowAccepted
	br.ReturnDate = &returnDate
	return br
}

func TestReturn_OnTime(t *testing.T) {
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.BorrowRequest, error) {
			return acceptedRequest(fixedNow.Add(24 * time.Hour)), nil
		},
		markReturnedFn: func(ctx context.Context, tx *sql.Tx, requestID int64, isLate bool) error {
			require.False(t, isLate)
			return nil
		},
		countAcceptedByFn: func(ctx context.Context, tx *sql.Tx, requesterID int64) (int64, error) {
			return 1, nil
		},
		setBorrowerFn: func(ctx context.Context, tx *sql.Tx, userID int64, borrower bool) error {
			t.Fatal("borrower flag must stay while another loan is active")
			return nil
		},
	}
	s, mock, _ := newService(t, m, fixedNow)
	mock.ExpectBegin()
	mock.ExpectCommit()

	br, err := s.Return(context.Background(), 1, 99)
	require.NoError(t, err)
	require.Equal(t, model.BorrowReturned, br.Status)
	require.False(t, br.IsLate)
}

func TestReturn_LateClearsBorrowerFlag(t *testing.T) {
	cleared := false
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.BorrowRequest, error) {
			return acceptedRequest(fixedNow.Add(-time.Hour)), nil
		},
		markReturnedFn: func(ctx context.Context, tx *sql.Tx, requestID int64, isLate bool) error {
			require.True(t, isLate)
			return nil
		},
		countAcceptedByFn: func(ctx context.Context, tx *sql.Tx, requesterID int64) (int64, error) {
			return 0, nil
		},
		setBorrowerFn: func(ctx context.Context, tx *sql.Tx, userID int64, borrower bool) error {
			require.False(t, borrower)
			cleared = true
			return nil
		},
	}
	s, mock, _ := newService(t, m, fixedNow)
	mock.ExpectBegin()
	mock.ExpectCommit()

	br, err := s.Return(context.Background(), 1, 99)
	require.NoError(t, err)
	require.True(t, br.IsLate)
	require.True(t, cleared)
}

func TestReturn_NotAccepted(t *testing.T) {
	m := &mockRepo{
		getForUpdateFn: func(ctx context.Context, tx *sql.Tx, requestID int64) (*model.BorrowRequest, error) {
			return pendingRequest(), nil
		},
	}
	s, mock, _ := newService(t, m, fixedNow)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Return(context.Background(), 1, 99)
	require.Equal(t, ErrNotAccepted, Code(err))
}

func TestMyCounts(t *testing.T) {
	m := &mockRepo{
		countAcceptedFn: func(ctx context.Context, requesterID int64) (int64, error) { return 2, nil },
		countLentFn:     func(ctx context.Context, ownerID int64) (int64, error) { return 5, nil },
	}
	s, _, _ := newService(t, m, fixedNow)

	c, err := s.MyCounts(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), c.Borrowed)
	require.Equal(t, int64(5), c.Lent)
}
