// Package sample converts raw oven conversions into Celsius samples and
// provides the smoothing/decimation steps between the device and the trend
// view.
package sample

import (
	"log"
	"time"

	"github.com/ovenforge/godryer/pkg/config"
	"github.com/ovenforge/godryer/pkg/oven"
)

// Sample represents one processed conversion with physical values.
type Sample struct {
	Timestamp time.Time
	Celsius   float64
	HeaterOn  bool
}

// Converter is a function type that converts a RawSample channel to a Sample
// channel.
type Converter func(in <-chan oven.RawSample) <-chan Sample

// NewConverter creates a converter that applies the sensor calibration to
// every raw conversion. Probe faults pass through as the disconnect
// sentinel so downstream consumers see them too.
func NewConverter(cfg *config.Config, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan oven.RawSample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for raw := range in {
				s := Sample{
					Timestamp: raw.Timestamp,
					Celsius:   oven.Celsius(raw.Temp, cfg.Sensor),
					HeaterOn:  raw.HeaterOn,
				}

				select {
				case out <- s:
				case <-time.After(time.Second):
					log.Printf("Converter output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}
