package results

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationResult(t *testing.T) {
	ok := SuccessResult[int, error](7)
	assert.True(t, ok.IsSuccess())
	assert.False(t, ok.IsFailure())
	require.NotNil(t, ok.Success)
	assert.Equal(t, 7, *ok.Success)

	failed := FailureResult[int, error](errors.New("nope"))
	assert.False(t, failed.IsSuccess())
	assert.True(t, failed.IsFailure())
	assert.EqualError(t, *failed.Failure, "nope")

	var empty OperationResult[int, error]
	assert.False(t, empty.IsSuccess())
	assert.False(t, empty.IsFailure())
}

func TestMap(t *testing.T) {
	mapped := Map(SuccessResult[int, error](42), strconv.Itoa)
	require.True(t, mapped.IsSuccess())
	assert.Equal(t, "42", *mapped.Success)

	cause := errors.New("refused")
	failed := Map(FailureResult[int, error](cause), strconv.Itoa)
	assert.False(t, failed.IsSuccess())
	require.True(t, failed.IsFailure())
	assert.ErrorIs(t, *failed.Failure, cause)
}
