package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"fintrack/internal/database"
	"fintrack/internal/models"
)

type SettingsServiceTestSuite struct {
	suite.Suite
	db  *sql.DB
	svc *SettingsService
	ctx context.Context
}

func (s *SettingsServiceTestSuite) SetupTest() {
	db, err := database.New(":memory:")
	require.NoError(s.T(), err, "failed to open test database")
	// A second pooled connection would see its own empty :memory: database
	db.SetMaxOpenConns(1)
	require.NoError(s.T(), database.Migrate(db))
	s.db = db
	s.svc = NewSettingsService(db)
	s.ctx = context.Background()
}

func (s *SettingsServiceTestSuite) TearDownTest() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *SettingsServiceTestSuite) TestGetAbsentReturnsZeroValue() {
	settings, err := s.svc.Get(s.ctx, "user-1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.Settings{UserID: "user-1"}, settings)
}

func (s *SettingsServiceTestSuite) TestUpsertCreatesLazily() {
	in := models.Settings{UserID: "user-1", Name: "Alice", Currency: "EUR", Notifications: true}
	out, err := s.svc.Upsert(s.ctx, in)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), in, out)

	got, err := s.svc.Get(s.ctx, "user-1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), in, got)
}

func (s *SettingsServiceTestSuite) TestUpsertReplacesExisting() {
	_, err := s.svc.Upsert(s.ctx, models.Settings{UserID: "user-1", Currency: "EUR", Notifications: true})
	require.NoError(s.T(), err)

	_, err = s.svc.Upsert(s.ctx, models.Settings{UserID: "user-1", Currency: "USD"})
	require.NoError(s.T(), err)

	got, err := s.svc.Get(s.ctx, "user-1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "USD", got.Currency)
	assert.False(s.T(), got.Notifications)

	var n int
	require.NoError(s.T(), s.db.QueryRow("SELECT COUNT(*) FROM user_settings").Scan(&n))
	assert.Equal(s.T(), 1, n, "upsert must not duplicate the record")
}

func (s *SettingsServiceTestSuite) TestSettingsArePerUser() {
	_, err := s.svc.Upsert(s.ctx, models.Settings{UserID: "user-1", Currency: "EUR"})
	require.NoError(s.T(), err)

	got, err := s.svc.Get(s.ctx, "user-2")
	require.NoError(s.T(), err)
	assert.Empty(s.T(), got.Currency)
}

func TestSettingsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SettingsServiceTestSuite))
}
