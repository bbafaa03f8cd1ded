package memutils_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/buddy/memutils"
)

type brokenValidatable struct{}

func (brokenValidatable) Validate() error {
	return errors.New("broken")
}

func TestDebugValidate(t *testing.T) {
	if memutils.DebugValidationEnabled {
		require.Panics(t, func() { memutils.DebugValidate(brokenValidatable{}) })
		require.Panics(t, func() { memutils.DebugCheckPow2(12, "size") })
	} else {
		require.NotPanics(t, func() { memutils.DebugValidate(brokenValidatable{}) })
		require.NotPanics(t, func() { memutils.DebugCheckPow2(12, "size") })
	}

	require.NotPanics(t, func() { memutils.DebugCheckPow2(16, "size") })
}
