package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"  Hello   World!  ", "hello-world"},
		{"Kadın Giyim", "kadin-giyim"},
		{"Çocuk Ürünleri", "cocuk-urunleri"},
		{"Größe & Farbe", "grosse-farbe"},
		{"Crème brûlée", "creme-brulee"},
		{"T-Shirt -- XL", "t-shirt-xl"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}

func TestPath(t *testing.T) {
	assert.Equal(t, "main-product/sw10001", Path("Main Product", "", "SW10001"))
	assert.Empty(t, Path("", "  "))
}
