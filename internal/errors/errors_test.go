package errors

import (
	"errors"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileReadError(t *testing.T) {
	underlying := &fs.PathError{Op: "open", Path: "src/a.ts", Err: fs.ErrPermission}
	err := NewFileReadError("read", "src/a.ts", underlying)

	assert.Equal(t, ErrorTypePermission, err.Type)
	assert.Equal(t, "permission", err.Reason())
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.Equal(t, "file read failed for src/a.ts: open src/a.ts: permission denied", err.Error())
	assert.False(t, err.Timestamp.IsZero())
}

func TestFileReadErrorClassification(t *testing.T) {
	_, statErr := os.Stat("/definitely/not/here.ts")
	require.Error(t, statErr)

	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"not found", statErr, ErrorTypeNotFound},
		{"permission", fs.ErrPermission, ErrorTypePermission},
		{"other", errors.New("disk on fire"), ErrorTypeRead},
		{"nil", nil, ErrorTypeRead},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewFileReadError("read", "x.ts", tt.err).Type)
		})
	}
}

func TestEncodingError(t *testing.T) {
	err := NewEncodingError("logo.tsx", "content is not valid UTF-8")

	assert.Equal(t, ErrorTypeEncoding, err.Type)
	assert.Equal(t, "file decode failed for logo.tsx: content is not valid UTF-8", err.Error())
}

func TestRootError(t *testing.T) {
	err := NewRootError("/missing", ErrRootNotFound)

	assert.True(t, errors.Is(err, ErrRootNotFound))
	assert.False(t, errors.Is(err, ErrRootNotDirectory))
	assert.Equal(t, "cannot analyze /missing: root path does not exist", err.Error())

	var rootErr *RootError
	require.True(t, errors.As(error(err), &rootErr))
	assert.Equal(t, "/missing", rootErr.Root)
}

func TestConfigError(t *testing.T) {
	underlying := errors.New("must be positive")

	withField := NewConfigError("clustering", "k", underlying)
	assert.Equal(t, "config error for clustering.k: must be positive", withField.Error())
	assert.True(t, errors.Is(withField, underlying))

	sectionOnly := NewConfigError("scoring", "", underlying)
	assert.Equal(t, "config error in scoring: must be positive", sectionOnly.Error())
}

func TestMultiError(t *testing.T) {
	t.Run("filters nils", func(t *testing.T) {
		err := NewMultiError([]error{nil, nil})
		assert.Empty(t, err.Errors)
		assert.Equal(t, "no errors", err.Error())
		assert.NoError(t, err.ErrorOrNil())
	})

	t.Run("single error", func(t *testing.T) {
		only := errors.New("only")
		err := NewMultiError([]error{nil, only})
		assert.Equal(t, "only", err.Error())
		assert.Same(t, err, err.ErrorOrNil())
	})

	t.Run("unwraps all", func(t *testing.T) {
		first := errors.New("first")
		second := NewConfigError("report", "top", errors.New("negative"))
		err := NewMultiError([]error{first, second})

		assert.True(t, errors.Is(err, first))
		var cfgErr *ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, "top", cfgErr.Field)
		assert.Contains(t, err.Error(), "2 errors")
	})
}
