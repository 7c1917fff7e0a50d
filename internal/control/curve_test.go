package control

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		StopTemperature:   30,
		StartTemperature:  40,
		HighTemperature:   70,
		MinDutyCycle:      0.5,
		MaxDutyCycle:      0.9,
		LagTimeCycle:      8,
		MaxSpeedTimeCycle: 32,
	}
}

func TestCurveMap(t *testing.T) {
	c := NewCurve(testConfig())

	tests := []struct {
		name string
		temp float64
		want float64
	}{
		{name: "well below start", temp: -10, want: 0.5},
		{name: "just below start", temp: 39.9, want: 0.5},
		{name: "at start", temp: 40, want: 0.5},
		{name: "midpoint", temp: 55, want: 0.7},
		{name: "at high", temp: 70, want: 0.9},
		{name: "above high", temp: 95, want: 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, c.Map(tt.temp), 1e-9)
		})
	}
}

func TestCurveMonotonic(t *testing.T) {
	c := NewCurve(testConfig())

	prev := c.Map(40)
	for temp := 40.0; temp <= 70; temp += 0.25 {
		duty := c.Map(temp)
		require.GreaterOrEqual(t, duty, prev, "curve must be non-decreasing at %.2f°C", temp)
		require.GreaterOrEqual(t, duty, 0.5)
		require.LessOrEqual(t, duty, 0.9)
		prev = duty
	}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, testConfig().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "stop above start",
			mutate:  func(c *Config) { c.StopTemperature = 45 },
			wantErr: "stop-temperature",
		},
		{
			name:    "start above high",
			mutate:  func(c *Config) { c.StartTemperature = 75 },
			wantErr: "start-temperature",
		},
		{
			name:    "min duty zero",
			mutate:  func(c *Config) { c.MinDutyCycle = 0 },
			wantErr: "min-duty-cycle",
		},
		{
			name:    "max duty one",
			mutate:  func(c *Config) { c.MaxDutyCycle = 1 },
			wantErr: "max-duty-cycle",
		},
		{
			name:    "min duty above max",
			mutate:  func(c *Config) { c.MinDutyCycle = 0.95; c.MaxDutyCycle = 0.9 },
			wantErr: "min-duty-cycle",
		},
		{
			name:    "non-positive lag",
			mutate:  func(c *Config) { c.LagTimeCycle = 0 },
			wantErr: "lag-time-cycle",
		},
		{
			name:    "non-positive max speed cycles",
			mutate:  func(c *Config) { c.MaxSpeedTimeCycle = -1 },
			wantErr: "max-speed-time-cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)

			_, err = New(cfg)
			require.Error(t, err, "New must reject what Validate rejects")
		})
	}
}
