package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(headers map[string]string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "192.0.2.10:5555"
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}
	return c
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{"Direct connection", nil, "192.0.2.10"},
		{"X-Real-IP", map[string]string{"X-Real-IP": "203.0.113.7"}, "203.0.113.7"},
		{"First public forwarded hop", map[string]string{"X-Forwarded-For": "10.1.1.1, 198.51.100.4, 203.0.113.9"}, "198.51.100.4"},
		{"All private hops", map[string]string{"X-Forwarded-For": "10.1.1.1, 192.168.0.3"}, "10.1.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClientIP(newContext(tt.headers)))
		})
	}
}

func TestUserAgent(t *testing.T) {
	assert.Equal(t, "Unknown", UserAgent(newContext(nil)))
	assert.Equal(t, "okhttp/4.9.0", UserAgent(newContext(map[string]string{"User-Agent": "okhttp/4.9.0"})))
}

func TestParseUserAgent(t *testing.T) {
	t.Run("Android phone", func(t *testing.T) {
		info := ParseUserAgent("Mozilla/5.0 (Linux; Android 12; SM-A525F) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/108.0.0.0 Mobile Safari/537.36")
		assert.Equal(t, "mobile", info.DeviceType)
		assert.Equal(t, "android", info.Platform)
		assert.Equal(t, "Chrome", info.Browser)
		assert.False(t, info.IsBot)
	})

	t.Run("iPad", func(t *testing.T) {
		info := ParseUserAgent("Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1")
		assert.Equal(t, "tablet", info.DeviceType)
	})

	t.Run("Desktop", func(t *testing.T) {
		info := ParseUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
		assert.Equal(t, "desktop", info.DeviceType)
		assert.Equal(t, "windows", info.Platform)
	})

	t.Run("Bot", func(t *testing.T) {
		info := ParseUserAgent("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
		assert.True(t, info.IsBot)
	})

	t.Run("Missing", func(t *testing.T) {
		info := ParseUserAgent("Unknown")
		assert.Equal(t, "unknown", info.DeviceType)
		assert.Equal(t, "unknown device", info.Summary())
	})
}

func TestDeviceInfoSummary(t *testing.T) {
	info := DeviceInfo{DeviceType: "mobile", OS: "Android 12", Browser: "Chrome"}
	assert.Equal(t, "Chrome on Android 12 (mobile)", info.Summary())
}

func TestGenerateSecret(t *testing.T) {
	secret, err := GenerateSecret(32)
	require.NoError(t, err)
	assert.Len(t, secret, 64)

	_, err = GenerateSecret(0)
	assert.Error(t, err)
}

func TestGenerateJWTSecrets(t *testing.T) {
	access, refresh, err := GenerateJWTSecrets()
	require.NoError(t, err)
	assert.Len(t, access, 64)
	assert.Len(t, refresh, 64)
	assert.NotEqual(t, access, refresh)
}
