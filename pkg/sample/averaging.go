package sample

import "log"

// NewAveraging creates a converter stage that averages a sliding window of
// Samples, reducing probe noise before the trend view. Disconnect-sentinel
// samples are forwarded unaveraged: a fault must never be smoothed away.
func NewAveraging(windowSize int, bufSize int, sentinel float64) func(in <-chan Sample) <-chan Sample {
	if windowSize <= 0 {
		windowSize = 1
	}
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan Sample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			var window []Sample

			for s := range in {
				if s.Celsius == sentinel {
					window = window[:0]
					select {
					case out <- s:
					default:
						log.Printf("Averaging output channel full, dropping fault sample")
					}
					continue
				}

				window = append(window, s)
				if len(window) > windowSize {
					window = window[1:]
				}

				select {
				case out <- averageSamples(window):
				default:
					log.Printf("Averaging output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}

// averageSamples averages the window's readings; the timestamp and heater
// state come from the most recent sample.
func averageSamples(window []Sample) Sample {
	if len(window) == 0 {
		return Sample{}
	}

	last := window[len(window)-1]

	var sum float64
	for _, s := range window {
		sum += s.Celsius
	}

	return Sample{
		Timestamp: last.Timestamp,
		Celsius:   sum / float64(len(window)),
		HeaterOn:  last.HeaterOn,
	}
}
