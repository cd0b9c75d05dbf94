package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlate(t *testing.T) {
	tests := map[string]string{
		"ChattoMetroGa 138707": "CHATTOMETROGA138707",
		"  dhaka-metro 11 ":    "DHAKAMETRO11",
		"":                     "",
		"   ":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePlate(in), in)
	}
}
