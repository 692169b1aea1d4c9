package rod

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHrefPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips query", "/products?page=2", "products"},
		{"trims slashes", "/products/paint/", "products/paint"},
		{"plain path", "catalog", "catalog"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, hrefPath(tt.in))
		})
	}
}
