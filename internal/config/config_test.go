package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWriteMode(t *testing.T) {
	tests := []struct {
		raw  string
		want WriteMode
	}{
		{"admin", WriteModeAdmin},
		{"bot", WriteModeBot},
		{"both", WriteModeBoth},
		{"BOT", WriteModeBot},
		{"  both  ", WriteModeBoth},
		{"", WriteModeAdmin},
		{"garbage", WriteModeAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeWriteMode(tt.raw))
		})
	}
}

func TestWriteModeSinks(t *testing.T) {
	assert.True(t, WriteModeAdmin.WritesRemote())
	assert.False(t, WriteModeAdmin.WritesLocal())

	assert.False(t, WriteModeBot.WritesRemote())
	assert.True(t, WriteModeBot.WritesLocal())

	assert.True(t, WriteModeBoth.WritesRemote())
	assert.True(t, WriteModeBoth.WritesLocal())
}

func TestLoad_IntakeDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "http://127.0.0.1:10010", cfg.Intake.URL)
	assert.Equal(t, WriteModeAdmin, cfg.Intake.Mode)
	assert.Equal(t, int64(4000), cfg.Intake.Timeout.Milliseconds())
	assert.False(t, cfg.Intake.FallbackLocal)
}

func TestLoad_StripsTrailingSlash(t *testing.T) {
	t.Setenv("INTAKE_URL", "https://intake.example.com///")

	cfg := Load()
	assert.Equal(t, "https://intake.example.com", cfg.Intake.URL)
}
