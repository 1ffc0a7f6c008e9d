package chart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBars(t *testing.T) {
	html, err := Bars(480, 240, []Bar{
		{Label: "Pendiente", Value: 4, Color: "#f59e0b"},
		{Label: "Entregado", Value: 9},
	}, Opts{Title: "Pedidos por estado"})
	require.NoError(t, err)
	out := string(html)
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Equal(t, 2, strings.Count(out, "<rect"))
	assert.Contains(t, out, `fill="#f59e0b"`)
	assert.Contains(t, out, "pedidos-por-estado-bar-title")
	assert.Contains(t, out, "Pendiente: 4")

	_, err = Bars(0, 0, nil, Opts{})
	assert.Error(t, err)
}

func TestLine(t *testing.T) {
	html, err := Line(0, 0, []float64{1200, 0, 350.5}, []string{"ene", "feb", "mar"}, Opts{Title: "Ventas", Tick: Euros})
	require.NoError(t, err)
	out := string(html)
	assert.Contains(t, out, "<path")
	assert.Equal(t, 3, strings.Count(out, "<circle"))
	assert.Contains(t, out, "ene: 1,2k €")

	_, err = Line(0, 0, []float64{1}, []string{"a", "b"}, Opts{})
	assert.Error(t, err)
	_, err = Line(10, 10, []float64{1}, []string{"a"}, Opts{})
	assert.Error(t, err)
}

func TestCompact(t *testing.T) {
	assert.Equal(t, "950", Compact(950))
	assert.Equal(t, "1,2k", Compact(1200))
	assert.Equal(t, "3,4M", Compact(3_400_000))
	assert.Equal(t, "2,5", Compact(2.5))
	assert.Equal(t, "0 €", Euros(0))
}
