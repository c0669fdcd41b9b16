package kernel

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	err := &Error{Op: "CallBoxed", Code: CodeUnsupportedConvention, Message: "no boxed entry"}
	assert.Equal(t, "kernel error [UNSUPPORTED_CONVENTION] in CallBoxed: no boxed entry", err.Error())

	assert.ErrorIs(t, err, ErrUnsupportedConvention)
	assert.NotErrorIs(t, err, ErrSignatureMismatch)
	assert.Nil(t, err.Unwrap())

	wrapped := fmt.Errorf("dispatch aten::add: %w", err)
	assert.ErrorIs(t, wrapped, ErrUnsupportedConvention)

	var kErr *Error
	require.ErrorAs(t, wrapped, &kErr)
	assert.Equal(t, CodeUnsupportedConvention, kErr.Code)
}

func TestErrorDetails(t *testing.T) {
	cause := errors.New("bad argument")
	err := &Error{Op: "CallBoxed", Code: CodeBoxedContractViolation, Message: "bad", Details: cause}

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrBoxedContractViolation)

	err.Details = map[string]int{"index": 1}
	assert.Nil(t, err.Unwrap())
}

func TestErrorJSON(t *testing.T) {
	err := &Error{Op: "Materialize", Code: CodeInvalidKernel, Message: "nil"}

	data, jErr := json.Marshal(err)
	require.NoError(t, jErr)
	assert.JSONEq(t, `{"op":"Materialize","code":"INVALID_KERNEL","message":"nil"}`, string(data))
}

func TestEverySentinelHasACode(t *testing.T) {
	codes := []ErrorCode{
		CodeUninitializedHandle,
		CodeUnsupportedConvention,
		CodeSignatureMismatch,
		CodeBoxedContractViolation,
		CodeInvalidKernel,
	}
	for _, code := range codes {
		err := &Error{Code: code}
		assert.ErrorIs(t, err, sentinels[code], code)
	}
}
