package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/daysabroad/internal/config"
	"github.com/banshee-data/daysabroad/internal/units"
)

func TestParseLonLat(t *testing.T) {
	tests := []struct {
		in      string
		lon     float64
		lat     float64
		wantErr bool
	}{
		{in: "-1.4301757,54.0085726", lon: -1.4301757, lat: 54.0085726},
		{in: " 2.3522 , 48.8566 ", lon: 2.3522, lat: 48.8566},
		{in: "180,-90", lon: 180, lat: -90},
		{in: "54.0", wantErr: true},
		{in: "1,2,3", wantErr: true},
		{in: "east,54", wantErr: true},
		{in: "1,north", wantErr: true},
		{in: "181,0", wantErr: true},
		{in: "0,91", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lon, lat, err := parseLonLat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lon, lon)
			assert.Equal(t, tt.lat, lat)
		})
	}
}

func parseFlags(t *testing.T, args ...string) (*config.AnalysisConfig, error) {
	t.Helper()
	fs, f := newAnalyseFlagSet(io.Discard)
	require.NoError(t, fs.Parse(args))
	cfg := config.EmptyConfig()
	return cfg, f.apply(fs, cfg)
}

func TestApply_OnlyExplicitFlags(t *testing.T) {
	cfg, err := parseFlags(t, "-f", "Records.json", "-json")
	require.NoError(t, err)
	assert.Equal(t, config.EmptyConfig(), cfg, "defaults must not shadow config file values")
}

func TestApply_Overrides(t *testing.T) {
	cfg, err := parseFlags(t,
		"-s", "2020-01-01", "-e", "2020-12-31", "-l", "2.35,48.85",
		"-target", "183", "-gap", "30", "-v", "-t")
	require.NoError(t, err)

	assert.Equal(t, "2020-01-01", *cfg.Start)
	assert.Equal(t, "2020-12-31", *cfg.End)
	assert.Equal(t, 2.35, cfg.GetCenterLon())
	assert.Equal(t, 48.85, cfg.GetCenterLat())
	assert.Equal(t, 183, cfg.GetTargetDays())
	assert.Equal(t, 30, cfg.GetMaxGapDays())
	assert.True(t, cfg.GetVerbose())
	assert.True(t, cfg.GetIncludeTransitions())
	assert.Nil(t, cfg.RadiusKm)
}

func TestApply_RadiusUnits(t *testing.T) {
	cfg, err := parseFlags(t, "-r", "100", "-units", units.Miles)
	require.NoError(t, err)
	assert.InDelta(t, 160.9344, cfg.GetRadiusKm(), 1e-9)

	cfg, err = parseFlags(t, "-r", "100")
	require.NoError(t, err)
	assert.InDelta(t, 100, cfg.GetRadiusKm(), 1e-9)

	// units from a config file apply to -r as well
	fs, f := newAnalyseFlagSet(io.Discard)
	require.NoError(t, fs.Parse([]string{"-r", "100"}))
	nmi := units.NauticalMiles
	cfg = &config.AnalysisConfig{Units: &nmi}
	require.NoError(t, f.apply(fs, cfg))
	assert.InDelta(t, 185.32, cfg.GetRadiusKm(), 0.01)
}

func TestApply_Invalid(t *testing.T) {
	_, err := parseFlags(t, "-units", "furlong")
	assert.Error(t, err)

	_, err = parseFlags(t, "-l", "54")
	assert.ErrorIs(t, err, errInvalidLonLat)
}
