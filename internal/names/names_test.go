package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := map[string]string{
		"  ADANA ":        "Adana",
		"İSTANBUL":        "İstanbul",
		"izmir":           "İzmir",
		"KAHRAMAN  MARAŞ": "Kahraman Maraş",
	}
	for in, want := range tests {
		assert.Equal(t, want, Clean(in), in)
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "ISTANBUL", Key("İstanbul"))
	assert.Equal(t, "ELAZIG", Key("Elazığ"))
	assert.Equal(t, Key("Elazig"), Key("Elazığ"))
	assert.Equal(t, "KAHRAMANMARAS", Key("Kahramanmaraş"))
	assert.Equal(t, "CANAKKALE", Key("çanakkale"))
	assert.Equal(t, Key("Muğla"), Key("MUGLA"))
}

func TestIsSentinel(t *testing.T) {
	for _, s := range []string{"", "nan", "2023", "Toplam-Total", "Türkiye-Turkey", "İl-Provinces", "Year"} {
		assert.True(t, IsSentinel(s), s)
	}
	for _, s := range []string{"Adana", "Şanlıurfa", "Kırıkkale"} {
		assert.False(t, IsSentinel(s), s)
	}
}
