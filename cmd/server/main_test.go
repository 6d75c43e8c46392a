package main

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-maintenance/internal/auth"
	"github.com/ukydev/fleet-maintenance/internal/config"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	store := db.NewMemoryStore()
	authService, err := auth.NewService("secret", time.Hour)
	require.NoError(t, err)
	cfg := &config.Config{AdminUsername: "root", AdminPassword: "changeme123", AdminTenantID: "tenant-a"}

	require.NoError(t, ensureAdmin(ctx, cfg, store, authService, logger))
	user, err := store.FindUserByUsername(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "tenant-a", user.TenantID)
	assert.True(t, authService.CheckPassword("changeme123", user.PasswordHash))
	assert.Len(t, hook.Entries, 1)

	// Second start leaves the user alone.
	require.NoError(t, ensureAdmin(ctx, cfg, store, authService, logger))
	assert.Len(t, hook.Entries, 1)
}

func TestEnsureAdmin_WeakPassword(t *testing.T) {
	logger, _ := test.NewNullLogger()
	authService, err := auth.NewService("secret", time.Hour)
	require.NoError(t, err)
	cfg := &config.Config{AdminUsername: "root", AdminPassword: "short", AdminTenantID: "tenant-a"}

	assert.Error(t, ensureAdmin(context.Background(), cfg, db.NewMemoryStore(), authService, logger))
}

func TestOpenStore_Memory(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store, err := openStore(context.Background(), &config.Config{StoreDriver: config.DriverMemory}, logger)
	require.NoError(t, err)
	assert.IsType(t, &db.MemoryStore{}, store)
}
