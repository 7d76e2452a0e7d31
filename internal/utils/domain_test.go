package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"url with path and query", "https://example.com/path?q=1", "example.com"},
		{"bare domain", "example.com", "example.com"},
		{"surrounding whitespace", "  https://sub.example.com  ", "sub.example.com"},
		{"empty input", "", ""},
		{"http scheme", "http://example.com", "example.com"},
		{"no scheme with path", "example.com/signup", "example.com"},
		{"query without path", "example.com?utm=1", "example.com"},
		{"fragment", "example.com#anchor", "example.com"},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDomain(tt.input))
		})
	}
}

func TestStripWWW(t *testing.T) {
	assert.Equal(t, "example.com", StripWWW("www.example.com"))
	assert.Equal(t, "example.com", StripWWW("example.com"))
	assert.Equal(t, "www2.example.com", StripWWW("www2.example.com"))
}

func TestParentDomain(t *testing.T) {
	assert.Equal(t, "b.example.com", ParentDomain("a.b.example.com"))
	assert.Equal(t, "example.com", ParentDomain("b.example.com"))
	// two labels can't be reduced further
	assert.Equal(t, "example.com", ParentDomain("example.com"))
}

func TestLabelCount(t *testing.T) {
	assert.Equal(t, 0, LabelCount(""))
	assert.Equal(t, 2, LabelCount("example.com"))
	assert.Equal(t, 4, LabelCount("k2._domainkey.example.com"))
}

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, UniqueStrings([]string{"a", "b", "a", "b"}))
	assert.NotNil(t, UniqueStrings(nil))
}
