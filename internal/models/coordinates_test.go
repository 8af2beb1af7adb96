package models

import (
	"testing"

	"github.com/shenikar/safe_route_system/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLatLon(t *testing.T) {
	p, err := ParseLatLon("-3.7,-38.5")
	require.NoError(t, err)
	assert.Equal(t, LatLon{Lat: -3.7, Lon: -38.5}, p)
	assert.Equal(t, [2]float64{-38.5, -3.7}, p.LonLat())

	p, err = ParseLatLon(" 10.5 , 20.25 ")
	require.NoError(t, err)
	assert.Equal(t, LatLon{Lat: 10.5, Lon: 20.25}, p)

	p, err = ParseLatLon("+45,-0")
	require.NoError(t, err)
	assert.Equal(t, 45.0, p.Lat)
}

func TestParseLatLon_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"-3.7",
		"-3.7,-38.5,1",
		"abc,-38.5",
		"-3.7,xyz",
		"91,0",
		"0,181",
		"NaN,0",
		"-3.7;-38.5",
		"0x1p-2,0",
		"0x1_0p0,0",
		"1_0,0",
		"1e1,0",
		"Inf,0",
		"0,-Infinity",
		".5,0",
		"5.,0",
		"- 3.7,0",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseLatLon(in)
			assert.ErrorIs(t, err, e.ErrInvalidCoordinates)
		})
	}
}

func TestClassificationValid(t *testing.T) {
	for _, c := range Classifications {
		assert.True(t, c.Valid())
	}
	assert.False(t, Classification("meteor").Valid())
	assert.False(t, Classification("").Valid())
}
