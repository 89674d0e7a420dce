package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() *Form {
	f := NewForm()
	f.Email = "ada@example.com"
	f.Password = "correcthorse"
	f.ConfirmPassword = "correcthorse"
	f.Username = "ada_l"
	f.DisplayName = "Ada Lovelace"
	f.Interests = []string{"scifi", "poetry"}
	return f
}

func TestFormHappyPath(t *testing.T) {
	f := validForm()

	require.Nil(t, f.Next())
	assert.Equal(t, StepProfile, f.Step())
	require.Nil(t, f.Next())
	assert.Equal(t, StepInterests, f.Step())
	require.Nil(t, f.Next())
	assert.True(t, f.Done())

	req := f.Request()
	assert.Equal(t, "ada@example.com", req.Email)
	assert.Equal(t, "ada_l", req.Username)
	assert.Equal(t, []string{"scifi", "poetry"}, req.Interests)
}

func TestFormAccountStepErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *Form)
		field string
	}{
		{"missing at sign", func(f *Form) { f.Email = "ada.example.com" }, "email"},
		{"no domain dot", func(f *Form) { f.Email = "ada@example" }, "email"},
		{"short password", func(f *Form) { f.Password = "short"; f.ConfirmPassword = "short" }, "password"},
		{"mismatched confirm", func(f *Form) { f.ConfirmPassword = "different1" }, "confirm_password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.setup(f)

			errs := f.Next()
			require.NotNil(t, errs)
			assert.Contains(t, errs, tt.field)
			assert.Equal(t, StepAccount, f.Step(), "form must not advance on error")
		})
	}
}

func TestFormProfileStepErrors(t *testing.T) {
	f := validForm()
	require.Nil(t, f.Next())

	f.Username = "Ada!"
	f.DisplayName = "   "
	errs := f.Next()
	require.NotNil(t, errs)
	assert.Contains(t, errs, "username")
	assert.Contains(t, errs, "display_name")
	assert.Equal(t, StepProfile, f.Step())
}

func TestFormInterestsRequired(t *testing.T) {
	f := validForm()
	require.Nil(t, f.Next())
	require.Nil(t, f.Next())

	f.Interests = nil
	errs := f.Next()
	require.NotNil(t, errs)
	assert.Contains(t, errs, "interests")
	assert.False(t, f.Done())
}

func TestFormBackKeepsValues(t *testing.T) {
	f := validForm()
	require.Nil(t, f.Next())
	require.Equal(t, StepProfile, f.Step())

	f.Back()
	assert.Equal(t, StepAccount, f.Step())
	assert.Equal(t, "ada@example.com", f.Email)

	// Back at the first step stays put.
	f.Back()
	assert.Equal(t, StepAccount, f.Step())
}

func TestValidUsername(t *testing.T) {
	assert.True(t, validUsername("ada_l"))
	assert.True(t, validUsername("user123"))
	assert.False(t, validUsername("ab"))
	assert.False(t, validUsername("UPPER"))
	assert.False(t, validUsername("has space"))
	assert.False(t, validUsername("waaaaaaaaaaaaaaaaaaaaaytoolong"))
}
