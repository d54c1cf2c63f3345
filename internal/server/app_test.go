package server

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/activationgate/internal/logging"
	"github.com/dmitrijs2005/activationgate/internal/server/activation"
	"github.com/dmitrijs2005/activationgate/internal/server/config"
	"github.com/dmitrijs2005/activationgate/internal/server/models"
	"github.com/dmitrijs2005/activationgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/activationgate/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, c *config.Config) (*App, repomanager.RepositoryManager) {
	t.Helper()
	rm := repomanager.NewInMemoryRepositoryManager()
	return &App{
		config:      c,
		logger:      logging.Nop(),
		repomanager: rm,
		gate:        activation.New(services.NewActivationDirectory(rm)),
	}, rm
}

func TestApp_InstallBackfill(t *testing.T) {
	ctx := context.Background()
	app, rm := newTestApp(t, &config.Config{InstallBackfill: true})

	legacy, err := rm.Users().Create(ctx, &models.User{UserName: "legacy", Email: "legacy@example.com"})
	require.NoError(t, err)
	fresh, err := rm.Users().Create(ctx, &models.User{UserName: "fresh", Email: "fresh@example.com"})
	require.NoError(t, err)
	require.NoError(t, rm.UserMeta().Set(ctx, fresh.ID, activation.AttributeKey, "k7m2pq9xzz"))

	require.NoError(t, app.installBackfill(ctx))

	v, ok, err := rm.UserMeta().Get(ctx, legacy.ID, activation.AttributeKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, activation.ConsumedValue, v)

	v, _, err = rm.UserMeta().Get(ctx, fresh.ID, activation.AttributeKey)
	require.NoError(t, err)
	assert.Equal(t, "k7m2pq9xzz", v)
}

func TestApp_InstallBackfillDisabled(t *testing.T) {
	ctx := context.Background()
	app, rm := newTestApp(t, &config.Config{})

	legacy, err := rm.Users().Create(ctx, &models.User{UserName: "legacy", Email: "legacy@example.com"})
	require.NoError(t, err)

	require.NoError(t, app.installBackfill(ctx))

	_, ok, err := rm.UserMeta().Get(ctx, legacy.ID, activation.AttributeKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewApp_MemoryStorageWithBackfill(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.Storage = config.StorageMemory
	c.InstallBackfill = true
	c.AdminUserName = "root"
	c.AdminPassword = "hunter2"

	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	id, err := app.userService.UserIDByName(context.Background(), "root")
	require.NoError(t, err)
	v, ok, err := app.repomanager.UserMeta().Get(context.Background(), id, activation.AttributeKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, activation.ConsumedValue, v)
}
