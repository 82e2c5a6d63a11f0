package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name, first, last string
		want              string
	}{
		{"Ada Lovelace", "", "", "Ada Lovelace"},
		{"", "Ada", "Lovelace", "Ada Lovelace"},
		{"", "Ada", "", "Ada"},
		{"", "", "Lovelace", "Lovelace"},
		{"  ", " ", " ", ""},
		{"Countess", "Ada", "Lovelace", "Countess"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayName(tt.name, tt.first, tt.last))
	}
}

func TestPatchApply(t *testing.T) {
	phone := ""
	email := "new@x.com"
	admin := true
	a := &Account{Email: "old@x.com", Phone: "123", FirstName: "Ada"}

	Patch{Email: &email, Phone: &phone, IsAdmin: &admin}.Apply(a)

	assert.Equal(t, "new@x.com", a.Email)
	assert.Equal(t, "", a.Phone)
	assert.True(t, a.IsAdmin)
	assert.Equal(t, "Ada", a.FirstName)
	assert.True(t, Patch{}.IsEmpty())
	assert.False(t, Patch{Email: &email}.IsEmpty())
}

func TestHasPendingReset(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	assert.False(t, (&Account{}).HasPendingReset(now))
	assert.True(t, (&Account{ResetToken: "t", ResetExpires: &future}).HasPendingReset(now))
	assert.False(t, (&Account{ResetToken: "t", ResetExpires: &past}).HasPendingReset(now))
}
