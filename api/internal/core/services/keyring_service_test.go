package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sealbox/api/internal/core/domain"
	"sealbox/api/internal/core/services"
)

func TestKeyringService_Create_And_Get(t *testing.T) {
	keyring := services.NewKeyringService(30 * time.Minute)
	defer keyring.Close()
	ctx := context.Background()

	session, err := keyring.Create(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.NotEqual(t, uuid.Nil, session.ID)
	assert.False(t, session.Key.IsZero())
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), session.ExpiresAt, 5*time.Second)

	got, err := keyring.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
}

func TestKeyringService_Distinct_Keys_Per_Session(t *testing.T) {
	keyring := services.NewKeyringService(time.Minute)
	defer keyring.Close()
	ctx := context.Background()

	a, err := keyring.Create(ctx)
	require.NoError(t, err)
	b, err := keyring.Create(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestKeyringService_Get_Unknown(t *testing.T) {
	keyring := services.NewKeyringService(time.Minute)
	defer keyring.Close()

	_, err := keyring.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestKeyringService_Get_Expired(t *testing.T) {
	keyring := services.NewKeyringService(10 * time.Millisecond)
	defer keyring.Close()
	ctx := context.Background()

	session, err := keyring.Create(ctx)
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)

	// Expiry is enforced on Get, before the sweeper ever runs
	_, err = keyring.Get(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestKeyringService_Revoke(t *testing.T) {
	keyring := services.NewKeyringService(time.Minute)
	defer keyring.Close()
	ctx := context.Background()

	session, err := keyring.Create(ctx)
	require.NoError(t, err)

	assert.True(t, keyring.Revoke(ctx, session.ID))
	assert.False(t, keyring.Revoke(ctx, session.ID), "second revoke must report the session already gone")

	_, err = keyring.Get(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
