package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConstraint_Any(t *testing.T) {
	for _, s := range []string{"", "*"} {
		c, err := ParseConstraint(s)
		require.NoError(t, err)
		assert.Equal(t, ConstraintAny, c.Kind)
		assert.True(t, c.Satisfies(MustParseVersion("9.9.9")))
	}
}

func TestParseConstraint_ExactForms(t *testing.T) {
	for _, s := range []string{"1.2.3", "=1.2.3"} {
		c, err := ParseConstraint(s)
		require.NoError(t, err)
		assert.Equal(t, ConstraintExact, c.Kind)
		assert.True(t, c.Satisfies(MustParseVersion("1.2.3")))
		assert.False(t, c.Satisfies(MustParseVersion("1.2.4")))
	}
}

func TestParseConstraint_Caret(t *testing.T) {
	c, err := ParseConstraint("^1.2.3")
	require.NoError(t, err)
	assert.True(t, c.Satisfies(MustParseVersion("1.2.3")))
	assert.True(t, c.Satisfies(MustParseVersion("1.9.0")))
	assert.False(t, c.Satisfies(MustParseVersion("2.0.0")))
	assert.False(t, c.Satisfies(MustParseVersion("1.2.2")))
}

func TestParseConstraint_Tilde(t *testing.T) {
	c, err := ParseConstraint("~1.2.3")
	require.NoError(t, err)
	assert.True(t, c.Satisfies(MustParseVersion("1.2.9")))
	assert.False(t, c.Satisfies(MustParseVersion("1.3.0")))
}

func TestParseConstraint_Range(t *testing.T) {
	c, err := ParseConstraint(">=1.0.0 <2.0.0")
	require.NoError(t, err)
	assert.True(t, c.Satisfies(MustParseVersion("1.0.0")))
	assert.True(t, c.Satisfies(MustParseVersion("1.9.9")))
	assert.False(t, c.Satisfies(MustParseVersion("2.0.0")))
	assert.False(t, c.Satisfies(MustParseVersion("0.9.9")))
}

func TestParseConstraint_RangeExclusiveMin(t *testing.T) {
	c, err := ParseConstraint(">1.0.0")
	require.NoError(t, err)
	assert.False(t, c.Satisfies(MustParseVersion("1.0.0")))
	assert.True(t, c.Satisfies(MustParseVersion("1.0.1")))
}

func TestParseConstraint_RejectsUnrecognizedToken(t *testing.T) {
	_, err := ParseConstraint(">= not-a-version")
	assert.Error(t, err)
}

func TestParseConstraint_RejectsMalformedTilde(t *testing.T) {
	_, err := ParseConstraint("~~~")
	assert.Error(t, err)
}
