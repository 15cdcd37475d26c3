package firestore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/aquaflow-backend/pkg/config"
)

func TestNewRequiresProject(t *testing.T) {
	_, err := New(context.Background(), config.OrderStoreConfig{}, nil)
	require.Error(t, err)
}

func TestEmulatorHostPrefersConfig(t *testing.T) {
	t.Setenv(envEmulatorHost, "env-host:8080")
	assert.Equal(t, "cfg-host:9090", EmulatorHost(config.OrderStoreConfig{FirestoreEmulator: "cfg-host:9090"}))
	assert.Equal(t, "env-host:8080", EmulatorHost(config.OrderStoreConfig{}))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(status.Error(codes.NotFound, "missing")))
	assert.False(t, IsNotFound(status.Error(codes.Unavailable, "down")))
	assert.False(t, IsNotFound(errors.New("plain")))
}
