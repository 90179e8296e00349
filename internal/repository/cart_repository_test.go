package repository_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/thriftline/marketplace/internal/domain"
	"github.com/thriftline/marketplace/internal/port"
	"github.com/thriftline/marketplace/internal/repository"
	"go.uber.org/goleak"
	"golang.org/x/text/currency"
)

type cartRepositorySuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	repo      port.CartRepository
	container testcontainers.Container
}

// entry point to run the tests in the suite
func TestCartRepositorySuite(t *testing.T) {
	// Verifies no leaks after all tests in the suite run.
	defer goleak.VerifyNone(t)

	suite.Run(t, new(cartRepositorySuite))
}

// before all tests in the suite
func (suite *cartRepositorySuite) SetupSuite() {
	ctx := suite.T().Context()

	var (
		connStr string
		err     error
	)

	suite.container, connStr, err = startPostgres(ctx)
	suite.NoError(err)

	suite.pool, err = pgxpool.New(ctx, connStr)
	suite.NoError(err)

	suite.repo = repository.NewCart(suite.pool)
}

// after all tests in the suite
func (suite *cartRepositorySuite) TearDownSuite() {
	ctx := suite.T().Context()

	if suite.pool != nil {
		suite.pool.Close()
	}
	if suite.container != nil {
		suite.NoError(suite.container.Terminate(ctx))
	}
}

func (suite *cartRepositorySuite) TestUpsertItem() {
	item1 := fakeCartItem()
	item2 := fakeCartItem()

	tests := []struct {
		name   string
		userID string
		item   domain.CartItem
	}{
		{
			name:   "add single item: ok",
			userID: gofakeit.UUID(),
			item:   item1,
		},
		{
			name:   "add another item: ok",
			userID: gofakeit.UUID(),
			item:   item2,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			err := suite.repo.UpsertItem(ctx, tt.userID, tt.item)
			require.NoError(t, err)

			actualCart, err := suite.repo.GetCart(ctx, tt.userID)
			require.NoError(t, err)

			expectedCart := domain.Cart{
				UserID: tt.userID,
				Items:  []domain.CartItem{tt.item},
			}

			assertCart(t, expectedCart, actualCart)
		})
	}
}

// re-adding the same product must overwrite the line, not duplicate it
func (suite *cartRepositorySuite) TestUpsertItem_Idempotent() {
	t := suite.T()
	ctx := t.Context()

	userID := gofakeit.UUID()
	item := fakeCartItem()

	err := suite.repo.UpsertItem(ctx, userID, item)
	require.NoError(t, err)

	updated := item
	updated.Title = gofakeit.ProductName()
	updated.Price = domain.Money{
		Amount:   decimal.NewFromInt(42),
		Currency: item.Price.Currency,
	}

	err = suite.repo.UpsertItem(ctx, userID, updated)
	require.NoError(t, err)

	actualCart, err := suite.repo.GetCart(ctx, userID)
	require.NoError(t, err)

	expectedCart := domain.Cart{
		UserID: userID,
		Items:  []domain.CartItem{updated},
	}

	assertCart(t, expectedCart, actualCart)
}

func (suite *cartRepositorySuite) TestDeleteItem() {
	item := fakeCartItem()
	userID := gofakeit.UUID()

	err := suite.repo.UpsertItem(suite.T().Context(), userID, item)
	suite.NoError(err)

	tests := []struct {
		name      string
		userID    string
		productID uuid.UUID
		wantFound bool
	}{
		{
			name:      "delete existing item: ok",
			userID:    userID,
			productID: item.ProductID,
			wantFound: true,
		},
		{
			name:      "delete non-existing item: not found",
			userID:    userID,
			productID: uuid.New(),
			wantFound: false,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			ctx := t.Context()

			found, err := suite.repo.DeleteItem(ctx, tt.userID, tt.productID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, found)
		})
	}
}

func (suite *cartRepositorySuite) TestDeleteItems() {
	t := suite.T()
	ctx := t.Context()

	userID := gofakeit.UUID()
	item1 := fakeCartItem()
	item2 := fakeCartItem()
	kept := fakeCartItem()

	for _, item := range []domain.CartItem{item1, item2, kept} {
		err := suite.repo.UpsertItem(ctx, userID, item)
		require.NoError(t, err)
	}

	err := suite.repo.DeleteItems(ctx, userID, []uuid.UUID{item1.ProductID, item2.ProductID})
	require.NoError(t, err)

	actualCart, err := suite.repo.GetCart(ctx, userID)
	require.NoError(t, err)

	expectedCart := domain.Cart{
		UserID: userID,
		Items:  []domain.CartItem{kept},
	}

	assertCart(t, expectedCart, actualCart)
}

func assertCart(t *testing.T, expected domain.Cart, actual domain.Cart) {
	t.Helper()

	// Custom comparer for Money.Currency fields
	comparer := cmp.Comparer(func(x, y currency.Unit) bool {
		return x.String() == y.String()
	})

	decimalComparer := cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})

	// Ignore the CreatedAt field in CartItem and
	// Treat empty slices as equal to nil
	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.CartItem{}, "CreatedAt"),
		cmpopts.EquateEmpty(),
		cmpopts.SortSlices(func(a, b domain.CartItem) bool {
			return a.ProductID.String() < b.ProductID.String()
		}),
	}

	diff := cmp.Diff(expected, actual, comparer, decimalComparer, opts)
	assert.Empty(t, diff)
}
