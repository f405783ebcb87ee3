package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lower cases", "Jane.Doe@Example.COM", "jane.doe@example.com"},
		{"gmail drops dots and tag", "Foo.Bar+promo@GMail.com", "foobar@gmail.com"},
		{"googlemail folds to gmail", "foo.bar@googlemail.com", "foobar@gmail.com"},
		{"outlook drops plus tag", "shopper+deals@Outlook.com", "shopper@outlook.com"},
		{"hotmail keeps dots", "a.b+x@hotmail.com", "a.b@hotmail.com"},
		{"icloud drops plus tag", "me+1@icloud.com", "me@icloud.com"},
		{"yahoo drops dash tag", "seller-spam@yahoo.com", "seller@yahoo.com"},
		{"other domains keep tags", "ops+alerts@marketgate.io", "ops+alerts@marketgate.io"},
		{"tag-only local part is kept", "+promo@gmail.com", "+promo@gmail.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEmail(tt.in))
		})
	}

	assert.Equal(t, 42, NormalizeEmail(42), "non-strings pass through")
	assert.Equal(t, "no-at-sign", NormalizeEmail("no-at-sign"))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("buyer@example.com"))
	assert.False(t, IsEmail("buyer@"))
	assert.False(t, IsEmail("not an email"))
	assert.False(t, IsEmail(""))
	assert.False(t, IsEmail(123))
}

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("Abcdef1!"))
	assert.False(t, IsStrongPassword("Abcde1!"), "too short")
	assert.False(t, IsStrongPassword("abcdefg1!"), "no upper")
	assert.False(t, IsStrongPassword("ABCDEFG1!"), "no lower")
	assert.False(t, IsStrongPassword("Abcdefgh!"), "no digit")
	assert.False(t, IsStrongPassword("Abcdefgh1"), "no symbol")
	assert.False(t, IsStrongPassword("Abcdefg1#"), "symbol outside the allowed set")
	assert.False(t, IsStrongPassword(nil))
	assert.False(t, IsStrongPassword("Àbcdefg1!"), "non-ASCII upper does not count")
	assert.False(t, IsStrongPassword("Aßçdéfg!١"), "non-ASCII digits do not count")
	assert.True(t, IsStrongPassword("Zoë-Abc1!"), "non-ASCII characters are still allowed")
}

func TestIsName(t *testing.T) {
	assert.True(t, IsName("Ada Lovelace"))
	assert.True(t, IsName("Zoë"))
	assert.False(t, IsName("A"))
	assert.False(t, IsName("R2D2"))
	assert.False(t, IsName("O'Brien"))
	assert.False(t, IsName("abcdefghijklmnopqrstuvwxyzabcdefghijklmnopqrstuvwxyz"))
}

func TestIsPhone(t *testing.T) {
	assert.True(t, IsPhone("+1 (555) 010-9999"))
	assert.True(t, IsPhone("0201234567"))
	assert.False(t, IsPhone("12345"))
	assert.False(t, IsPhone("call me maybe"))
}

func TestIsPresent(t *testing.T) {
	assert.True(t, IsPresent("x"))
	assert.True(t, IsPresent(false))
	assert.False(t, IsPresent("   "))
	assert.False(t, IsPresent(nil))
}
