package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/bus-tracking-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Level(t *testing.T) {
	closeFn, err := Setup(config.ServerConfig{LogLevel: "debug"})
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	closeFn2, err := Setup(config.ServerConfig{LogLevel: "chatty"})
	require.NoError(t, err)
	defer closeFn2()
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

func TestSetup_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	closeFn, err := Setup(config.ServerConfig{LogLevel: "info", LogFile: path})
	require.NoError(t, err)

	logrus.WithField("bus_id", 7).Info("location accepted")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "location accepted", entry["msg"])
	assert.Equal(t, float64(7), entry["bus_id"])
	assert.Equal(t, "info", entry["level"])
}
