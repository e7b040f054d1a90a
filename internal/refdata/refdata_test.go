package refdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	idx := Default()

	got, ok := idx.UKNations.Find("northern ireland")
	require.True(t, ok)
	assert.Equal(t, "Northern Ireland", got)

	assert.True(t, idx.Countries.Has("France"))
	assert.False(t, idx.Countries.Has("Atlantis"))
	assert.True(t, idx.BaselAnnexIX.Has("b1010"))
	assert.True(t, idx.HazardousProperties.Has("HP15"))
	assert.False(t, idx.HazardousProperties.Has("HP16"))
	assert.True(t, idx.InterimRecoveryCodes.Has("R13"))
	assert.False(t, idx.InterimRecoveryCodes.Has("R1"))
	assert.True(t, idx.EWCChapters.Has("20"))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("countries: [unterminated"))
	require.Error(t, err)

	_, err = Parse([]byte("oecdCodes: [GB040]\n"))
	require.Error(t, err, "tables without countries are rejected")
}
