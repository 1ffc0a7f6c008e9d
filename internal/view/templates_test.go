package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "12.345,50 €", Money(12345.5))
	assert.Equal(t, "25,00 €", Money(25))
	assert.Equal(t, "12", Number(12))
	assert.Equal(t, "2,50", Number(2.5))
	assert.Equal(t, "09/03/2024", Date("2024-03-09"))
	assert.Equal(t, "09/03/2024", Date("2024-03-09T10:00:00Z"))
	assert.Equal(t, "-", Date(""))
}
