package staff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validUser() NewUser {
	return NewUser{
		Identifier: "12.345.678-9",
		FirstNames: "Camila",
		LastNames:  "Pérez",
		Email:      "a@b.co",
		Password:   "s3cret",
		Role:       RoleUser,
		Department: "Municipalidad norte",
		Address:    "Av. Principal 123",
		JobNumber:  "+56 2 2345 6789",
		Extension:  "1234",
	}
}

func TestNewUser_Validate(t *testing.T) {
	t.Run("Should accept a complete user", func(t *testing.T) {
		require.NoError(t, validUser().Validate())
	})
	t.Run("Should reject a malformed email", func(t *testing.T) {
		u := validUser()
		u.Email = "not-an-email"
		err := u.Validate()
		require.ErrorIs(t, err, ErrInvalid)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.Has("email"))
		assert.Len(t, verr.Fields, 1)
	})
	t.Run("Should report every empty field", func(t *testing.T) {
		err := NewUser{}.Validate()
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Fields, 10)
		assert.True(t, verr.Has("passHash"))
	})
	t.Run("Should bound the job number and extension", func(t *testing.T) {
		u := validUser()
		u.JobNumber = strings.Repeat("1", MaxJobNumberLen+1)
		u.Extension = "12345"
		var verr *ValidationError
		require.ErrorAs(t, u.Validate(), &verr)
		assert.True(t, verr.Has("numMunicipal"))
		assert.True(t, verr.Has("anexoMunicipal"))
	})
	t.Run("Should reject letters in numeric fields", func(t *testing.T) {
		u := validUser()
		u.JobNumber = "22-33"
		u.Extension = "1a"
		var verr *ValidationError
		require.ErrorAs(t, u.Validate(), &verr)
		assert.Len(t, verr.Fields, 2)
	})
	t.Run("Should accept rut without dots and with K check digit", func(t *testing.T) {
		u := validUser()
		u.Identifier = "7654321-K"
		require.NoError(t, u.Validate())
		u.Identifier = "12345678"
		assert.Error(t, u.Validate())
	})
	t.Run("Should redact the password for logs", func(t *testing.T) {
		assert.Equal(t, "[REDACTED]", validUser().Redacted().Password)
	})
}

func TestValidateCell(t *testing.T) {
	t.Run("Should mirror create rules for single edits", func(t *testing.T) {
		assert.NoError(t, ValidateCell(ColumnEmail, "x@y.cl"))
		assert.ErrorIs(t, ValidateCell(ColumnEmail, "x@y"), ErrInvalid)
		assert.ErrorIs(t, ValidateCell(ColumnExtension, "99999"), ErrInvalid)
		assert.ErrorIs(t, ValidateCell(ColumnFirstNames, "  "), ErrInvalid)
		assert.ErrorIs(t, ValidateCell(ColumnIdentifier, "1-9"), ErrImmutableIdentifier)
		assert.NoError(t, ValidateCell(ColumnRole, "admin"))
	})
}
