package identity_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thriftline/marketplace/internal/domain"
	"github.com/thriftline/marketplace/internal/identity"
	"github.com/thriftline/marketplace/internal/port"
)

func TestCurrent(t *testing.T) {
	ctx := t.Context()

	provider := identity.NewProvider()

	_, err := provider.Current(ctx)
	require.ErrorIs(t, err, port.ErrNotSignedIn)

	user := domain.User{ID: gofakeit.UUID(), Email: gofakeit.Email()}
	provider.SignIn(user)

	current, err := provider.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, current)

	provider.SignOut()

	_, err = provider.Current(ctx)
	require.ErrorIs(t, err, port.ErrNotSignedIn)
}

func TestOnChange(t *testing.T) {
	provider := identity.NewProvider()

	var notified []domain.User
	unsubscribe := provider.OnChange(func(u domain.User) {
		notified = append(notified, u)
	})

	user := domain.User{ID: gofakeit.UUID(), Email: gofakeit.Email()}
	provider.SignIn(user)
	provider.SignOut()

	require.Len(t, notified, 2)
	assert.Equal(t, user, notified[0])
	assert.Equal(t, domain.User{}, notified[1]) // sign-out delivers the zero user

	unsubscribe()

	provider.SignIn(user)
	assert.Len(t, notified, 2)
}
