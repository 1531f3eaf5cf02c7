package oven

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.bug.st/serial"

	"github.com/ovenforge/godryer/pkg/config"
)

const (
	// DefaultBaudRate is the standard baud rate for the bridge MCU.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 100

	// adcMax is the full scale of the MCU's 10-bit ADC.
	adcMax = 1023
)

// RawSample represents one raw conversion streamed by the bridge MCU.
type RawSample struct {
	Timestamp time.Time
	Temp      uint16 // 10-bit probe ADC reading (0-1023)
	Encoder   uint16 // 10-bit encoder ADC reading (0-1023)
	HeaterOn  bool   // heater relay state as reported by the MCU
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Celsius converts a raw probe ADC reading to Celsius using the sensor
// calibration. A reading at either rail means the probe is open or shorted
// and yields the disconnect sentinel.
func Celsius(adc uint16, cfg config.SensorConfig) float64 {
	if adc == 0 || adc >= adcMax {
		return cfg.DisconnectedC
	}
	return cfg.Offset + cfg.Slope*float64(adc)
}

// parseLine parses a line from the MCU into a RawSample.
// Format: unix_micros,temp_adc,encoder_adc,heater
// Example: 1234567890123,220,843,1
func parseLine(line string) (RawSample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 4 {
		return RawSample{}, fmt.Errorf("invalid line format: expected 4 comma-separated values, got %d", len(parts))
	}

	timestampMicros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	timestamp := time.Unix(0, timestampMicros*1000)

	temp, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid temperature reading: %w", err)
	}
	if temp > adcMax {
		return RawSample{}, fmt.Errorf("temperature reading out of range: %d (max %d)", temp, adcMax)
	}

	enc, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid encoder reading: %w", err)
	}
	if enc > adcMax {
		return RawSample{}, fmt.Errorf("encoder reading out of range: %d (max %d)", enc, adcMax)
	}

	switch parts[3] {
	case "0", "1":
	default:
		return RawSample{}, fmt.Errorf("invalid heater state: %q", parts[3])
	}

	return RawSample{
		Timestamp: timestamp,
		Temp:      uint16(temp),
		Encoder:   uint16(enc),
		HeaterOn:  parts[3] == "1",
	}, nil
}
