package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHostname(t *testing.T) {
	t.Run("returns hostname on success", func(t *testing.T) {
		orig := osHostname
		defer func() { osHostname = orig }()

		osHostname = func() (string, error) { return "device-host", nil }
		assert.Equal(t, "device-host", GetHostname())
	})

	t.Run("returns fallback on error", func(t *testing.T) {
		orig := osHostname
		defer func() { osHostname = orig }()

		osHostname = func() (string, error) { return "", errors.New("no hostname") }
		assert.Equal(t, UnknownHostFallback, GetHostname())
	})
}
