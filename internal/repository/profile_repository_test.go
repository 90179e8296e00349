package repository_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/thriftline/marketplace/internal/domain"
	"github.com/thriftline/marketplace/internal/port"
	"github.com/thriftline/marketplace/internal/repository"
)

type profileRepositorySuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	repo      port.ProfileRepository
	container testcontainers.Container
}

// entry point to run the tests in the suite
func TestProfileRepositorySuite(t *testing.T) {
	suite.Run(t, new(profileRepositorySuite))
}

// before all tests in the suite
func (suite *profileRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.NoError(err)

	suite.repo = repository.NewProfile(suite.pool)
}

// after all tests in the suite
func (suite *profileRepositorySuite) TearDownSuite() {
	ctx := suite.T().Context()

	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *profileRepositorySuite) TestUpsertProfile() {
	defer suite.deleteAll()

	tests := []struct {
		name      string
		profile   domain.Profile
		wantError string
	}{
		{
			name:    "valid profile: ok",
			profile: randomProfile(),
		},
		{
			name: "profile with empty fields: ok",
			profile: domain.Profile{
				UserID: gofakeit.UUID(),
			},
		},
		{
			name:      "empty userID: error",
			profile:   domain.Profile{Name: gofakeit.Name()},
			wantError: "userID is empty",
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			err := suite.repo.UpsertProfile(ctx, tt.profile)
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			stored, err := suite.repo.GetProfile(ctx, tt.profile.UserID)
			require.NoError(t, err)

			assertProfile(t, tt.profile, stored)
		})
	}
}

// An update with empty fields must not wipe what the user saved before.
func (suite *profileRepositorySuite) TestUpsertProfile_Merge() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()

	original := randomProfile()
	require.NoError(t, suite.repo.UpsertProfile(ctx, original))

	update := domain.Profile{
		UserID: original.UserID,
		Name:   gofakeit.Name(),
		// PhoneNumber and Email left empty on purpose
	}
	require.NoError(t, suite.repo.UpsertProfile(ctx, update))

	stored, err := suite.repo.GetProfile(ctx, original.UserID)
	require.NoError(t, err)

	expected := original
	expected.Name = update.Name

	assertProfile(t, expected, stored)
}

func (suite *profileRepositorySuite) TestGetProfile_NotFound() {
	t := suite.T()

	_, err := suite.repo.GetProfile(t.Context(), gofakeit.UUID())
	require.ErrorIs(t, err, repository.ErrProfileNotFound)
}

func (suite *profileRepositorySuite) deleteAll() {
	_, err := suite.pool.Exec(suite.T().Context(), "TRUNCATE TABLE profiles")
	suite.NoError(err)
}

func randomProfile() domain.Profile {
	return domain.Profile{
		UserID:      gofakeit.UUID(),
		Name:        gofakeit.Name(),
		PhoneNumber: gofakeit.Phone(),
		Email:       gofakeit.Email(),
	}
}

func assertProfile(t *testing.T, expected, actual domain.Profile) {
	t.Helper()

	assert.Equal(t, expected.UserID, actual.UserID)
	assert.Equal(t, expected.Name, actual.Name)
	assert.Equal(t, expected.PhoneNumber, actual.PhoneNumber)
	assert.Equal(t, expected.Email, actual.Email)
	assert.False(t, actual.UpdatedAt.IsZero())
}
