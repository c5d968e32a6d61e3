package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bambu.printjobs/internal/adapters/homeassistant"
	"bambu.printjobs/internal/config"
)

func TestPressCaller_HomeAssistantBackend(t *testing.T) {
	ha := homeassistant.NewClient("http://ha.local:8123", "token")
	cfg := &config.Config{InvokerBackend: config.BackendHomeAssistant}

	caller, closeCaller := pressCaller(cfg, ha)
	defer closeCaller()

	got, ok := caller.(*homeassistant.Client)
	require.True(t, ok)
	require.Same(t, ha, got)
}
