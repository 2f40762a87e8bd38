package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelevantEnvironment(t *testing.T) {
	environ := []string{
		"PATH=/usr/bin",
		"LINEAR_FILTER_PORT=8080",
		"GIN_MODE=release",
		"LINEAR_FILTER_API_KEY=hunter2",
		"LINEAR_FILTER_BORDER=wrap=odd",
		"LINEAR_FILTER_BROKEN",
	}

	assert.Equal(t, [][2]string{
		{"GIN_MODE", "release"},
		{"LINEAR_FILTER_API_KEY", "********"},
		{"LINEAR_FILTER_BORDER", "wrap=odd"},
		{"LINEAR_FILTER_PORT", "8080"},
	}, RelevantEnvironment(environ))
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, Version())
}
