package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"fintrack/internal/apperror"
	"fintrack/internal/database"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	db  *sql.DB
	svc *TransactionService
	ctx context.Context
}

func (s *TransactionServiceTestSuite) SetupTest() {
	db, err := database.New(":memory:")
	require.NoError(s.T(), err, "failed to open test database")
	// A second pooled connection would see its own empty :memory: database
	db.SetMaxOpenConns(1)
	require.NoError(s.T(), database.Migrate(db))
	s.db = db
	s.svc = NewTransactionService(db)
	s.ctx = context.Background()
}

func (s *TransactionServiceTestSuite) TearDownTest() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *TransactionServiceTestSuite) add(userID string, amount float64, date time.Time) string {
	tx, err := s.svc.Add(s.ctx, userID, TransactionInput{
		Type:     "expense",
		Category: "food",
		Amount:   amount,
		Date:     date,
	})
	require.NoError(s.T(), err)
	return tx.ID
}

func (s *TransactionServiceTestSuite) assertCode(err error, code string) {
	require.Error(s.T(), err)
	var appErr *apperror.AppError
	require.ErrorAs(s.T(), err, &appErr)
	assert.Equal(s.T(), code, appErr.Code)
}

func (s *TransactionServiceTestSuite) TestAddAndList() {
	now := time.Now()
	s.add("user-1", 12.50, now)

	tx, err := s.svc.Add(s.ctx, "user-1", TransactionInput{
		Type:     "Income",
		Category: " salary ",
		Amount:   2500,
		Date:     now.Add(time.Hour),
		Note:     "August",
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "income", tx.Type, "type is normalized")
	assert.Equal(s.T(), "salary", tx.Category)

	list, err := s.svc.List(s.ctx, "user-1")
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 2)
	assert.Equal(s.T(), "income", list[0].Type, "newest first")
	assert.Equal(s.T(), "expense", list[1].Type)
}

func (s *TransactionServiceTestSuite) TestListIsOwnerScoped() {
	now := time.Now()
	s.add("user-1", 10, now)
	s.add("user-2", 20, now)

	list, err := s.svc.List(s.ctx, "user-1")
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 1)
	assert.Equal(s.T(), 10.0, list[0].Amount)
}

func (s *TransactionServiceTestSuite) TestListEmpty() {
	list, err := s.svc.List(s.ctx, "user-1")
	require.NoError(s.T(), err)
	assert.Empty(s.T(), list)
	assert.NotNil(s.T(), list, "empty list serializes as [], not null")
}

func (s *TransactionServiceTestSuite) TestAddValidation() {
	now := time.Now()
	cases := []struct {
		name  string
		input TransactionInput
	}{
		{"bad type", TransactionInput{Type: "transfer", Category: "misc", Amount: 10, Date: now}},
		{"missing category", TransactionInput{Type: "expense", Amount: 10, Date: now}},
		{"zero amount", TransactionInput{Type: "expense", Category: "misc", Amount: 0, Date: now}},
		{"negative amount", TransactionInput{Type: "expense", Category: "misc", Amount: -5, Date: now}},
		{"missing date", TransactionInput{Type: "expense", Category: "misc", Amount: 10}},
	}
	for _, tc := range cases {
		_, err := s.svc.Add(s.ctx, "user-1", tc.input)
		s.assertCode(err, apperror.CodeValidation)
	}
}

func (s *TransactionServiceTestSuite) TestDelete() {
	id := s.add("user-1", 10, time.Now())

	require.NoError(s.T(), s.svc.Delete(s.ctx, "user-1", id))

	list, err := s.svc.List(s.ctx, "user-1")
	require.NoError(s.T(), err)
	assert.Empty(s.T(), list)
}

func (s *TransactionServiceTestSuite) TestDeleteForeignTransaction() {
	id := s.add("user-1", 10, time.Now())

	// Another user deleting by a real id gets NOT_FOUND, not a 403
	err := s.svc.Delete(s.ctx, "user-2", id)
	s.assertCode(err, apperror.CodeNotFound)

	// And the record survives
	list, err := s.svc.List(s.ctx, "user-1")
	require.NoError(s.T(), err)
	assert.Len(s.T(), list, 1)
}

func (s *TransactionServiceTestSuite) TestDeleteMissing() {
	err := s.svc.Delete(s.ctx, "user-1", "no-such-id")
	s.assertCode(err, apperror.CodeNotFound)
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
