package whoops

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_SetDefaults(t *testing.T) {
	disabled := false

	tests := []struct {
		name            string
		cfg             Config
		wantCatchErrors bool
		wantMaxFrames   int
	}{
		{name: "zero", cfg: Config{}, wantCatchErrors: true, wantMaxFrames: defaultMaxFrames},
		{name: "catch errors disabled", cfg: Config{CatchErrors: &disabled}, wantCatchErrors: false, wantMaxFrames: defaultMaxFrames},
		{name: "negative frames", cfg: Config{MaxFrames: -1}, wantCatchErrors: true, wantMaxFrames: defaultMaxFrames},
		{name: "custom frames", cfg: Config{MaxFrames: 8}, wantCatchErrors: true, wantMaxFrames: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.SetDefaults()

			require.NotNil(t, tt.cfg.CatchErrors)
			assert.Equal(t, tt.wantCatchErrors, *tt.cfg.CatchErrors)
			assert.Equal(t, tt.wantMaxFrames, tt.cfg.MaxFrames)
		})
	}
}

func TestConfig_skippers(t *testing.T) {
	assert.Empty(t, (&Config{}).skippers())

	cfg := Config{
		SkipPaths:       []string{"/health"},
		SkipExpressions: []string{`method == "OPTIONS"`},
	}
	skip := ChainSkipper(cfg.skippers()...)

	assert.True(t, skip(httptest.NewRequest(http.MethodGet, "/health", nil)))
	assert.True(t, skip(httptest.NewRequest(http.MethodOptions, "/api", nil)))
	assert.False(t, skip(httptest.NewRequest(http.MethodGet, "/api", nil)))
}
