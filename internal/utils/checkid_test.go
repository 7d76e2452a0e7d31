package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCheckID(t *testing.T) {
	id := GenerateCheckID()

	parts := strings.SplitN(id, ".", 2)
	require.Len(t, parts, 2)
	assert.NotEmpty(t, parts[0])
	assert.Len(t, parts[1], 12)

	assert.NotEqual(t, id, GenerateCheckID())
}
