package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `validate:"required"`
	Count int    `validate:"gte=1,lte=10"`
	Mode  string `validate:"omitempty,oneof=a b"`
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(&sample{Name: "x", Count: 3, Mode: "a"}))
}

func TestStructCollectsFieldErrors(t *testing.T) {
	err := Struct(&sample{Count: 11, Mode: "c"})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 3)
	assert.Equal(t, "Name is required", verr.Fields[0].Message)
	assert.Equal(t, "Count must be less than or equal to 10", verr.Fields[1].Message)
	assert.Equal(t, "Mode must be one of: a b", verr.Fields[2].Message)
	assert.Contains(t, err.Error(), "Name is required; ")
}
