package cpf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  bool
	}{
		{"valid plain", "52998224725", true},
		{"valid formatted", "529.982.247-25", true},
		{"another valid", "11144477735", true},
		{"tampered first check digit", "52998224715", false},
		{"tampered second check digit", "52998224724", false},
		{"all repeated digits", "11111111111", false},
		{"all zeros", "00000000000", false},
		{"too short", "5299822472", false},
		{"too long", "529982247251", false},
		{"empty", "", false},
		{"letters only", "abcdefghijk", false},
		{"digits hidden in noise", "52a998b224c725", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Valid(tc.value))
		})
	}
}

func TestNormalize(t *testing.T) {
	got, ok := Normalize("529.982.247-25")
	assert.True(t, ok)
	assert.Equal(t, "52998224725", got)

	_, ok = Normalize("529.982.247")
	assert.False(t, ok)
}
