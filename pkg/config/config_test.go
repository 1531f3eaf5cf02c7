package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, Band{Low: 840, High: 850}, cfg.Encoder.Prev)
	assert.Equal(t, Band{Low: 690, High: 705}, cfg.Encoder.Next)
	assert.Equal(t, Band{Low: 560, High: 610}, cfg.Encoder.Confirm)
	assert.Equal(t, 5*time.Millisecond, cfg.Encoder.Jitter)
	assert.Equal(t, 350*time.Millisecond, cfg.Encoder.PairTimeout)
	assert.Equal(t, float64(0.25), cfg.Sensor.Slope)
	assert.Equal(t, float64(-127), cfg.Sensor.DisconnectedC)
	assert.Equal(t, 1, cfg.Sensor.FreezeFloor)
	assert.Equal(t, 120, cfg.Sensor.BurnCeiling)
	assert.Equal(t, time.Hour, cfg.Drying.PreheatCeiling)
	assert.Len(t, cfg.Filaments, 5)
	assert.Equal(t, 10*time.Minute, cfg.History.Window)
}

func TestDefault_Catalog(t *testing.T) {
	cfg := Default()

	require.Len(t, cfg.Filaments, 5)
	assert.Equal(t, FilamentConfig{Name: "PLA", TargetTemp: 45, Duration: 6 * time.Hour}, cfg.Filaments[0])
	assert.Equal(t, FilamentConfig{Name: "ABS", TargetTemp: 60, Duration: 4 * time.Hour}, cfg.Filaments[1])
	assert.Equal(t, FilamentConfig{Name: "PETG", TargetTemp: 65, Duration: 4 * time.Hour}, cfg.Filaments[2])
	assert.Equal(t, FilamentConfig{Name: "TPU", TargetTemp: 50, Duration: 8 * time.Hour}, cfg.Filaments[3])
	assert.Equal(t, FilamentConfig{Name: "Nylon", TargetTemp: 70, Duration: 12 * time.Hour}, cfg.Filaments[4])
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyUSB0"

encoder:
  prev_band: {low: 800, high: 860}
  next_band: {low: 680, high: 710}
  confirm_band: {low: 550, high: 620}
  jitter: 10ms
  pair_timeout: 400ms

sensor:
  slope: 0.5
  offset: -10
  disconnected_c: -100
  freeze_floor: 2
  burn_ceiling: 110

drying:
  preheat_ceiling: 30m

filaments:
  - name: "PC"
    target_temp: 80
    duration: 5h

history:
  window: 20m
  average_samples: 7
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Equal(t, Band{Low: 800, High: 860}, cfg.Encoder.Prev)
	assert.Equal(t, Band{Low: 680, High: 710}, cfg.Encoder.Next)
	assert.Equal(t, Band{Low: 550, High: 620}, cfg.Encoder.Confirm)
	assert.Equal(t, 10*time.Millisecond, cfg.Encoder.Jitter)
	assert.Equal(t, 400*time.Millisecond, cfg.Encoder.PairTimeout)
	assert.Equal(t, 0.5, cfg.Sensor.Slope)
	assert.Equal(t, float64(-10), cfg.Sensor.Offset)
	assert.Equal(t, float64(-100), cfg.Sensor.DisconnectedC)
	assert.Equal(t, 2, cfg.Sensor.FreezeFloor)
	assert.Equal(t, 110, cfg.Sensor.BurnCeiling)
	assert.Equal(t, 30*time.Minute, cfg.Drying.PreheatCeiling)
	require.Len(t, cfg.Filaments, 1)
	assert.Equal(t, FilamentConfig{Name: "PC", TargetTemp: 80, Duration: 5 * time.Hour}, cfg.Filaments[0])
	assert.Equal(t, 20*time.Minute, cfg.History.Window)
	assert.Equal(t, 7, cfg.History.AverageSamples)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyUSB1"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)

	// Explicit field kept, everything else defaulted
	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, Band{Low: 840, High: 850}, cfg.Encoder.Prev)
	assert.Equal(t, 350*time.Millisecond, cfg.Encoder.PairTimeout)
	assert.Equal(t, float64(-127), cfg.Sensor.DisconnectedC)
	assert.Len(t, cfg.Filaments, 5)
	assert.Equal(t, 750*time.Millisecond, cfg.Mock.SampleRate)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("serial: [not: valid")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	_, err = Load(tmpfile.Name())
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())
	require.NoError(t, tmpfile.Close())

	cfg := Default()
	cfg.Serial.Port = "/dev/ttyACM7"
	cfg.Drying.PreheatCeiling = 45 * time.Minute
	cfg.Filaments = []FilamentConfig{{Name: "ASA", TargetTemp: 62, Duration: 4 * time.Hour}}

	require.NoError(t, cfg.Save(tmpfile.Name()))

	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestBand_Contains(t *testing.T) {
	b := Band{Low: 690, High: 705}

	// Bounds are exclusive
	assert.False(t, b.Contains(690))
	assert.False(t, b.Contains(705))

	assert.True(t, b.Contains(691))
	assert.True(t, b.Contains(700))
	assert.True(t, b.Contains(704))

	assert.False(t, b.Contains(0))
	assert.False(t, b.Contains(1023))
}
