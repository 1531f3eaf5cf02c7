package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_INTERVAL_MS = 1  // ADC read interval in milliseconds (same for both ADCs)
	NUM_SAMPLES        = 10 // Number of samples to average per output line

	// ADC configuration
	ADC_REFERENCE_MV = 5000 // Reference voltage in millivolts (5V)
	ADC_RESOLUTION   = 10   // ADC resolution in bits (10-bit = 0-1023)

	// Actuator pins
	PIN_HEATER = machine.D7 // heater relay, active high
	PIN_BUZZER = machine.D8 // active buzzer module

	// ADC pins
	PIN_TEMP_ADC    = machine.ADC0 // temperature probe divider
	PIN_ENCODER_ADC = machine.ADC1 // rotary encoder resistor ladder

	// LCD configuration (HD44780 behind an I2C backpack)
	LCD_I2C_ADDR = 0x27
	LCD_COLS     = 16
	LCD_ROWS     = 2

	// Serial configuration
	// Format "unix_micros,temp_adc,encoder_adc,heater\n"
	// Example: "1234567890123456,1023,1023,1\n" = ~30 bytes max per line
	// 100 outputs/sec * 30 bytes/line = 3,000 bytes/sec
	// UART 8N1: 10 bits/byte = 30,000 baud minimum
	// 115200 provides ~3.8x headroom
	UART_BAUD_RATE = 115200
)
