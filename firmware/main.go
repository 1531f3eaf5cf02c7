//go:generate tinygo flash -target=arduino-nano

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/hd44780i2c"
)

var (
	adcTemp    machine.ADC
	adcEncoder machine.ADC
	uart       = machine.UART0
	lcd        hd44780i2c.Device

	// Heater state, reported back on every output line
	heaterOn bool

	// ADC averaging - running sums and counts
	tempSum     uint32
	encoderSum  uint32
	sampleCount int
	lastADCRead time.Time
	lastEncoder uint16
	haveEncoder bool

	// Beeper deadline; zero means silent. The tone must never block the
	// sampling loop, or the host would lose encoder transitions.
	beepUntil time.Time

	// Serial buffer for reading command lines
	serialBuffer [40]byte
	serialPos    int
)

func main() {
	// Heater off before anything else
	PIN_HEATER.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_HEATER.Low()

	PIN_BUZZER.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_BUZZER.Low()

	// Configure ADC pins
	machine.InitADC()
	adcTemp = machine.ADC{Pin: PIN_TEMP_ADC}
	adcEncoder = machine.ADC{Pin: PIN_ENCODER_ADC}

	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}
	adcTemp.Configure(adcConfig)
	adcEncoder.Configure(adcConfig)

	// Configure UART for host commands
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Configure the LCD behind its I2C backpack
	machine.I2C0.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz})
	lcd = hd44780i2c.New(machine.I2C0, LCD_I2C_ADDR)
	lcd.Configure(hd44780i2c.Config{
		Width:  LCD_COLS,
		Height: LCD_ROWS,
	})

	// Greeting: the host repeats it over the D command once connected, but a
	// standalone power-up should still show signs of life.
	lcd.ClearDisplay()
	lcd.Print([]byte("Hello world!"))
	startBeep(250 * time.Millisecond)

	lastADCRead = time.Now()

	// Main loop
	for {
		now := time.Now()

		// Check for serial input (non-blocking)
		processSerial()

		// Silence the buzzer once its deadline passes
		if !beepUntil.IsZero() && now.After(beepUntil) {
			PIN_BUZZER.Low()
			beepUntil = time.Time{}
		}

		// Read both ADCs at the same time and rate (every 1ms)
		if now.Sub(lastADCRead) >= time.Duration(SAMPLE_INTERVAL_MS)*time.Millisecond {
			readADCs()
			lastADCRead = now
		}

		// Output an averaged line every N samples, or immediately when the
		// encoder level jumps - the host decodes knob pulses from these
		// lines, so a transition must not wait out the averaging window.
		if sampleCount >= NUM_SAMPLES || encoderJumped() {
			outputAveragedValues()
			tempSum = 0
			encoderSum = 0
			sampleCount = 0
		}

		// Small delay to prevent tight loop (but still allow precise timing)
		time.Sleep(100 * time.Microsecond)
	}
}

func readADCs() {
	// machine.ADC.Get returns 16-bit left-justified values; shift back down
	// to the native resolution so the host sees 0-1023.
	tempSum += uint32(adcTemp.Get() >> (16 - ADC_RESOLUTION))
	encoderSum += uint32(adcEncoder.Get() >> (16 - ADC_RESOLUTION))
	sampleCount++
}

// encoderJumped reports whether the most recent encoder sample moved away
// from the last streamed level by more than plain ADC noise.
func encoderJumped() bool {
	if sampleCount == 0 {
		return false
	}
	current := uint16(encoderSum / uint32(sampleCount))
	if !haveEncoder {
		return false
	}
	diff := int(current) - int(lastEncoder)
	if diff < 0 {
		diff = -diff
	}
	return diff > 8
}

func outputAveragedValues() {
	n := sampleCount
	if n == 0 {
		n = 1 // Avoid division by zero
	}
	tempAvg := uint16(tempSum / uint32(n))
	encoderAvg := uint16(encoderSum / uint32(n))

	lastEncoder = encoderAvg
	haveEncoder = true

	// Get timestamp in unix microseconds
	timestampMicros := time.Now().UnixNano() / 1000

	// Output format: "unix_micros,temp_adc,encoder_adc,heater\n"
	// Example: "1234567890123,220,843,1\n"
	print(timestampMicros)
	print(",")
	print(tempAvg)
	print(",")
	print(encoderAvg)
	print(",")
	if heaterOn {
		print("1")
	} else {
		print("0")
	}
	print("\n")
}

func processSerial() {
	// Read available bytes from serial
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		// Check for newline (end of line)
		if data == '\n' || data == '\r' {
			if serialPos > 0 {
				processCommand(serialBuffer[:serialPos])
			}
			serialPos = 0
			continue
		}

		if serialPos < len(serialBuffer) {
			serialBuffer[serialPos] = data
			serialPos++
		}
		// Overlong lines are truncated; the command parser rejects garbage
	}
}

// processCommand executes one host command line.
//
//	H0 / H1           heater off / on
//	B<ms>             beep for the given number of milliseconds
//	X                 clear the LCD
//	D<row>;<col>;<t>  print text at the given LCD position
func processCommand(cmd []byte) {
	switch cmd[0] {
	case 'H':
		if len(cmd) != 2 {
			return
		}
		switch cmd[1] {
		case '0':
			heaterOn = false
			PIN_HEATER.Low()
		case '1':
			heaterOn = true
			PIN_HEATER.High()
		}

	case 'B':
		ms, ok := parseUint(cmd[1:])
		if !ok {
			return
		}
		startBeep(time.Duration(ms) * time.Millisecond)

	case 'X':
		lcd.ClearDisplay()

	case 'D':
		row, col, text, ok := parseDisplay(cmd[1:])
		if !ok {
			return
		}
		lcd.SetCursor(col, row)
		lcd.Print(text)
	}
}

func startBeep(d time.Duration) {
	PIN_BUZZER.High()
	beepUntil = time.Now().Add(d)
}

// parseUint parses a small decimal number. Returns false on empty input or
// any non-digit byte.
func parseUint(b []byte) (uint32, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var v uint32
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint32(c-'0')
	}
	return v, true
}

// parseDisplay parses "<row>;<col>;<text>".
func parseDisplay(b []byte) (row, col uint8, text []byte, ok bool) {
	first := indexByte(b, ';')
	if first < 0 {
		return 0, 0, nil, false
	}
	second := indexByte(b[first+1:], ';')
	if second < 0 {
		return 0, 0, nil, false
	}
	second += first + 1

	r, rok := parseUint(b[:first])
	c, cok := parseUint(b[first+1 : second])
	if !rok || !cok || r >= LCD_ROWS || c >= LCD_COLS {
		return 0, 0, nil, false
	}

	text = b[second+1:]
	if len(text) > LCD_COLS {
		text = text[:LCD_COLS]
	}
	return uint8(r), uint8(c), text, true
}

// indexByte avoids pulling bytes.IndexByte into the firmware image.
func indexByte(b []byte, c byte) int {
	for i := range b {
		if b[i] == c {
			return i
		}
	}
	return -1
}
