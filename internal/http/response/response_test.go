package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOK(t *testing.T) {
	resp := OK()
	assert.True(t, resp.OK)
	assert.Empty(t, resp.Code)
	assert.Empty(t, resp.Error)
}

func TestErr(t *testing.T) {
	resp := Err(CodeConflict, "email already registered")
	assert.False(t, resp.OK)
	assert.Equal(t, CodeConflict, resp.Code)
	assert.Equal(t, "email already registered", resp.Error)
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=6"`
	}

	v := validator.New()
	err := v.Struct(payload{Email: "not-an-email", Password: "abc"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.False(t, resp.OK)
	assert.Equal(t, CodeValidation, resp.Code)
	assert.Contains(t, resp.Error, "Email")
	assert.Contains(t, resp.Error, "Password")
}
