package ble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID16(t *testing.T) {
	u := UUID16(0xfeaa)
	assert.Equal(t, UUID{0xaa, 0xfe}, u)
	assert.Equal(t, "feaa", u.String())
	assert.Equal(t, 2, u.Len())
	assert.True(t, u.Equal(EddystoneUUID))
}

func TestParseUUID(t *testing.T) {
	u, err := Parse("FEAA")
	require.NoError(t, err)
	assert.True(t, u.Equal(EddystoneUUID))

	u = MustParse("6e400001-b5a3-f393-e0a9-e50e24dcca9e")
	assert.Equal(t, 16, u.Len())
	assert.Equal(t, "6e400001b5a3f393e0a9e50e24dcca9e", u.String())

	_, err = Parse("FEA")
	assert.Error(t, err)
	_, err = Parse("FEAAFE")
	assert.Error(t, err)
	assert.Panics(t, func() { MustParse("xyz") })
}
