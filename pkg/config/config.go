package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial    SerialConfig     `yaml:"serial"`
	Encoder   EncoderConfig    `yaml:"encoder"`
	Sensor    SensorConfig     `yaml:"sensor"`
	Drying    DryingConfig     `yaml:"drying"`
	Filaments []FilamentConfig `yaml:"filaments"`
	History   HistoryConfig    `yaml:"history"`
	Mock      MockConfig       `yaml:"mock"`
}

// SerialConfig contains serial port configuration for the bridge MCU.
type SerialConfig struct {
	Port string `yaml:"port"`
}

// Band is a half-open ADC value range (Low, High), both bounds exclusive.
// Readings strictly inside the band classify as the band's action.
type Band struct {
	Low  uint16 `yaml:"low"`
	High uint16 `yaml:"high"`
}

// Contains reports whether the ADC value falls strictly inside the band.
func (b Band) Contains(v uint16) bool {
	return v > b.Low && v < b.High
}

// EncoderConfig contains the rotary encoder calibration.
//
// The band values are hardware-specific: they correspond to the resistor
// divider network on the encoder contacts (1% resistors) and must match the
// physical build. A reading of 0 or anything outside all bands is noise.
type EncoderConfig struct {
	Prev    Band `yaml:"prev_band"`
	Next    Band `yaml:"next_band"`
	Confirm Band `yaml:"confirm_band"`

	Jitter       time.Duration `yaml:"jitter"`        // contact bounce margin
	PairTimeout  time.Duration `yaml:"pair_timeout"`  // wait for the second contact closure
	PollInterval time.Duration `yaml:"poll_interval"` // decoder polling granularity
}

// SensorConfig contains the temperature probe calibration and plausibility
// limits. Celsius = Offset + Slope * adc; an ADC reading of 0 or at full
// scale means the probe is open/shorted and reads as DisconnectedC.
type SensorConfig struct {
	Slope         float64 `yaml:"slope"`          // degC per ADC count
	Offset        float64 `yaml:"offset"`         // degC at ADC zero
	DisconnectedC float64 `yaml:"disconnected_c"` // sentinel for a missing probe
	FreezeFloor   int     `yaml:"freeze_floor"`   // truncated readings at or below are a fault
	BurnCeiling   int     `yaml:"burn_ceiling"`   // truncated readings at or above are a fault
}

// DryingConfig contains drying stage parameters.
type DryingConfig struct {
	PreheatCeiling time.Duration `yaml:"preheat_ceiling"` // max time to first reach target
}

// FilamentConfig describes one drying profile in the catalog.
type FilamentConfig struct {
	Name       string        `yaml:"name"`
	TargetTemp int           `yaml:"target_temp"`
	Duration   time.Duration `yaml:"duration"`
}

// HistoryConfig contains temperature trend buffer parameters.
type HistoryConfig struct {
	Window         time.Duration `yaml:"window"`          // how much history the trend keeps
	AverageSamples int           `yaml:"average_samples"` // smoothing window, 0 = disabled
}

// MockConfig contains the simulated oven parameters.
type MockConfig struct {
	AmbientC     float64       `yaml:"ambient_c"`     // chamber temperature with the heater off
	HeaterGainC  float64       `yaml:"heater_gain_c"` // steady-state rise above ambient with the heater on
	TimeConstant time.Duration `yaml:"time_constant"` // first-order thermal lag
	NoiseC       float64       `yaml:"noise_c"`       // reading noise amplitude (degC)
	SampleRate   time.Duration `yaml:"sample_rate"`   // conversion rate
}

// Default returns a default configuration with sensible values.
// The encoder bands and sensor limits carry the calibrated values for the
// reference hardware and should not be changed casually.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "/dev/ttyACM0",
		},
		Encoder: EncoderConfig{
			Prev:         Band{Low: 840, High: 850},
			Next:         Band{Low: 690, High: 705},
			Confirm:      Band{Low: 560, High: 610},
			Jitter:       5 * time.Millisecond,
			PairTimeout:  350 * time.Millisecond,
			PollInterval: time.Millisecond,
		},
		Sensor: SensorConfig{
			Slope:         0.25, // 10-bit ADC spanning 0..255 degC
			Offset:        0,
			DisconnectedC: -127,
			FreezeFloor:   1,
			BurnCeiling:   120,
		},
		Drying: DryingConfig{
			PreheatCeiling: time.Hour,
		},
		Filaments: []FilamentConfig{
			{Name: "PLA", TargetTemp: 45, Duration: 6 * time.Hour},
			{Name: "ABS", TargetTemp: 60, Duration: 4 * time.Hour},
			{Name: "PETG", TargetTemp: 65, Duration: 4 * time.Hour},
			{Name: "TPU", TargetTemp: 50, Duration: 8 * time.Hour},
			{Name: "Nylon", TargetTemp: 70, Duration: 12 * time.Hour},
		},
		History: HistoryConfig{
			Window:         10 * time.Minute,
			AverageSamples: 3,
		},
		Mock: MockConfig{
			AmbientC:     25,
			HeaterGainC:  100,
			TimeConstant: 30 * time.Second,
			NoiseC:       0.2,
			SampleRate:   750 * time.Millisecond, // DS18B20-class conversion time
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}

	if c.Encoder.Prev == (Band{}) {
		c.Encoder.Prev = def.Encoder.Prev
	}
	if c.Encoder.Next == (Band{}) {
		c.Encoder.Next = def.Encoder.Next
	}
	if c.Encoder.Confirm == (Band{}) {
		c.Encoder.Confirm = def.Encoder.Confirm
	}
	if c.Encoder.Jitter == 0 {
		c.Encoder.Jitter = def.Encoder.Jitter
	}
	if c.Encoder.PairTimeout == 0 {
		c.Encoder.PairTimeout = def.Encoder.PairTimeout
	}
	if c.Encoder.PollInterval == 0 {
		c.Encoder.PollInterval = def.Encoder.PollInterval
	}

	if c.Sensor.Slope == 0 {
		c.Sensor.Slope = def.Sensor.Slope
	}
	if c.Sensor.DisconnectedC == 0 {
		c.Sensor.DisconnectedC = def.Sensor.DisconnectedC
	}
	if c.Sensor.FreezeFloor == 0 {
		c.Sensor.FreezeFloor = def.Sensor.FreezeFloor
	}
	if c.Sensor.BurnCeiling == 0 {
		c.Sensor.BurnCeiling = def.Sensor.BurnCeiling
	}

	if c.Drying.PreheatCeiling == 0 {
		c.Drying.PreheatCeiling = def.Drying.PreheatCeiling
	}

	if len(c.Filaments) == 0 {
		c.Filaments = def.Filaments
	}

	if c.History.Window == 0 {
		c.History.Window = def.History.Window
	}

	if c.Mock.AmbientC == 0 {
		c.Mock.AmbientC = def.Mock.AmbientC
	}
	if c.Mock.HeaterGainC == 0 {
		c.Mock.HeaterGainC = def.Mock.HeaterGainC
	}
	if c.Mock.TimeConstant == 0 {
		c.Mock.TimeConstant = def.Mock.TimeConstant
	}
	if c.Mock.SampleRate == 0 {
		c.Mock.SampleRate = def.Mock.SampleRate
	}
}
