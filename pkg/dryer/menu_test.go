package dryer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ovenforge/godryer/pkg/encoder"
)

func TestMenu_SelectFirst(t *testing.T) {
	catalog := CatalogFromConfig(nil)
	screen := newFakeScreen()
	input := &fakeInput{actions: []encoder.Action{encoder.Confirm}}

	m := NewMenu(catalog, screen, input)
	p := m.Select()

	assert.Equal(t, "PLA", p.Name)
	assert.Equal(t, "PLA ?", screen.line(0))
	assert.Equal(t, "6 hours at 45*", screen.line(1))
}

func TestMenu_SelectCycles(t *testing.T) {
	catalog := CatalogFromConfig(nil)
	screen := newFakeScreen()
	input := &fakeInput{actions: []encoder.Action{
		encoder.Next,
		encoder.Next,
		encoder.Prev,
		encoder.Confirm,
	}}

	m := NewMenu(catalog, screen, input)
	p := m.Select()

	assert.Equal(t, "ABS", p.Name)
	assert.Equal(t, "ABS ?", screen.line(0))
	assert.Equal(t, "4 hours at 60*", screen.line(1))
}

func TestMenu_SelectWrapsBackward(t *testing.T) {
	catalog := CatalogFromConfig(nil)
	screen := newFakeScreen()
	input := &fakeInput{actions: []encoder.Action{
		encoder.Prev, // wraps from 0 to the last entry
		encoder.Confirm,
	}}

	m := NewMenu(catalog, screen, input)
	p := m.Select()

	assert.Equal(t, "Nylon", p.Name)
	assert.Equal(t, "12 hours at 70*", screen.line(1))
}

func TestMenu_NoneKeepsSelection(t *testing.T) {
	catalog := CatalogFromConfig(nil)
	screen := newFakeScreen()
	input := &fakeInput{actions: []encoder.Action{
		encoder.Next,
		encoder.None,
		encoder.None,
		encoder.Confirm,
	}}

	m := NewMenu(catalog, screen, input)
	p := m.Select()

	assert.Equal(t, "ABS", p.Name)
}

func TestMenu_OverwritesLongerPreviousEntry(t *testing.T) {
	catalog := CatalogFromConfig(nil)
	screen := newFakeScreen()
	input := &fakeInput{actions: []encoder.Action{
		encoder.Prev, // Nylon, the longest name
		encoder.Next, // back to PLA
		encoder.Confirm,
	}}

	m := NewMenu(catalog, screen, input)
	p := m.Select()

	assert.Equal(t, "PLA", p.Name)
	// "Nylon ?" must not leave ghost characters behind "PLA ?"
	assert.Equal(t, "PLA ?", screen.line(0))
}
