package oven

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenforge/godryer/pkg/config"
)

func TestParseLine_Valid(t *testing.T) {
	raw, err := parseLine("1234567890123,220,843,1")
	require.NoError(t, err)

	assert.Equal(t, time.Unix(0, 1234567890123*1000), raw.Timestamp)
	assert.Equal(t, uint16(220), raw.Temp)
	assert.Equal(t, uint16(843), raw.Encoder)
	assert.True(t, raw.HeaterOn)
}

func TestParseLine_HeaterOff(t *testing.T) {
	raw, err := parseLine("1234567890123,220,0,0")
	require.NoError(t, err)
	assert.False(t, raw.HeaterOn)
	assert.Equal(t, uint16(0), raw.Encoder)
}

func TestParseLine_Invalid(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"too few fields", "123,220,843"},
		{"too many fields", "123,220,843,1,0"},
		{"bad timestamp", "abc,220,843,1"},
		{"bad temp", "123,abc,843,1"},
		{"temp out of range", "123,1024,843,1"},
		{"bad encoder", "123,220,abc,1"},
		{"encoder out of range", "123,220,2048,1"},
		{"bad heater", "123,220,843,2"},
		{"negative temp", "123,-1,843,1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseLine(tt.line)
			assert.Error(t, err)
		})
	}
}

func TestCelsius(t *testing.T) {
	cfg := config.SensorConfig{
		Slope:         0.25,
		Offset:        0,
		DisconnectedC: -127,
	}

	assert.Equal(t, 55.0, Celsius(220, cfg))
	assert.Equal(t, 0.25, Celsius(1, cfg))
	assert.Equal(t, 255.5, Celsius(1022, cfg))
}

func TestCelsius_Rails(t *testing.T) {
	cfg := config.SensorConfig{
		Slope:         0.25,
		DisconnectedC: -127,
	}

	// Either rail means the probe is open or shorted
	assert.Equal(t, -127.0, Celsius(0, cfg))
	assert.Equal(t, -127.0, Celsius(1023, cfg))
	assert.Equal(t, -127.0, Celsius(2000, cfg))
}

func TestCelsius_Offset(t *testing.T) {
	cfg := config.SensorConfig{
		Slope:         0.5,
		Offset:        -10,
		DisconnectedC: -127,
	}

	assert.Equal(t, 90.0, Celsius(200, cfg))
}
