package normalization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type color string

func newColors() *Normalizer[color] {
	return New("color", map[string]color{"Red": "red", "green": "green"}, "green")
}

func TestNormalize(t *testing.T) {
	n := newColors()
	require.Equal(t, color("red"), n.Normalize("  RED "))
	require.Equal(t, color("green"), n.Normalize("purple"))
	require.Equal(t, []string{"green", "red"}, n.Keys())
}

func TestParse(t *testing.T) {
	n := newColors()

	v, err := n.Parse("Red")
	require.NoError(t, err)
	require.Equal(t, color("red"), v)

	v, err = n.Parse("")
	require.NoError(t, err)
	require.Equal(t, color("green"), v)

	_, err = n.Parse("purple")
	require.EqualError(t, err, `invalid color "purple", valid options: green, red`)
}
