package validator

import (
	"strings"
	"testing"

	"minebet/models"

	"github.com/stretchr/testify/assert"
)

func TestUserID(t *testing.T) {
	assert.NoError(t, UserID(1))
	assert.NoError(t, UserID(6011041717))
	assert.ErrorIs(t, UserID(0), models.ErrInvalidInput)
	assert.ErrorIs(t, UserID(-5), models.ErrInvalidInput)
}

func TestAmount(t *testing.T) {
	assert.NoError(t, Amount(1))
	assert.NoError(t, Amount(3000))
	assert.ErrorIs(t, Amount(0), models.ErrInvalidAmount)
	assert.ErrorIs(t, Amount(-100), models.ErrInvalidAmount)
	assert.ErrorIs(t, Amount(MaxAmount+1), models.ErrInvalidAmount)
}

func TestText(t *testing.T) {
	assert.NoError(t, Text("Ada"))
	assert.ErrorIs(t, Text(""), models.ErrInvalidInput)
	assert.ErrorIs(t, Text(strings.Repeat("a", MaxTextLength+1)), models.ErrInvalidInput)

	for _, bad := range []string{"a;b", "x--", "DROP table", "1 UNION 2", "sElEcT"} {
		assert.ErrorIs(t, Text(bad), models.ErrInvalidInput, "input %q", bad)
	}
}
