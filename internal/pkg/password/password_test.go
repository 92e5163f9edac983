package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHash(t *testing.T) {
	hashed, err := Hash("pw123456")

	require.NoError(t, err)
	assert.NotEmpty(t, hashed)
	assert.NotEqual(t, "pw123456", hashed)

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
}

func TestHashWithCost_OutOfRangeFallsBack(t *testing.T) {
	hashed, err := HashWithCost("pw123456", 99)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, DefaultCost, cost)
}

func TestVerify(t *testing.T) {
	hashed, err := HashWithCost("pw123456", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, Verify("pw123456", hashed))
	assert.False(t, Verify("wrongpassword", hashed))
}

func TestVerify_InvalidHash(t *testing.T) {
	assert.False(t, Verify("pw123456", "invalidhash"))
}

func TestValidatePassword(t *testing.T) {
	assert.False(t, ValidatePassword("short"))
	assert.True(t, ValidatePassword("pw123456"))
	assert.False(t, ValidatePassword(strings.Repeat("a", MaxLength+1)))
}
