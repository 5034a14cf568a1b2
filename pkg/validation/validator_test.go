package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string `validate:"required,not_blank,max=10"`
	Email    string `validate:"required,email"`
	Guests   int    `validate:"gt=0"`
	Currency string `validate:"omitempty,iso4217"`
}

func TestStruct(t *testing.T) {
	v := New()

	require.NoError(t, v.Struct(sample{Name: "Ayesha", Email: "a@example.com", Guests: 10, Currency: "PKR"}))

	err := v.Struct(sample{Name: "   ", Email: "nope", Guests: 0, Currency: "XXXX"})
	require.Error(t, err)

	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 4)
	assert.Equal(t, FieldError{Field: "Name", Message: "Name must not be blank"}, verrs[0])
	assert.Equal(t, "Email must be a valid email address", verrs[1].Message)
	assert.Equal(t, "Guests must be greater than 0", verrs[2].Message)
	assert.Equal(t, "Currency must be an ISO 4217 currency code", verrs[3].Message)
	assert.Contains(t, err.Error(), "validation failed: 4 error(s)")
}
