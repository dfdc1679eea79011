package setof_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/setof"
)

func TestSchemaError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := setof.NewSchemaError(setof.ErrUnknownType, "GetRandomIntEdge", "node", "bad type", cause)

		assert.Contains(t, err.Error(), "setof: schema error")
		assert.Contains(t, err.Error(), "type GetRandomIntEdge")
		assert.Contains(t, err.Error(), "field node")
		assert.Contains(t, err.Error(), "bad type")
		assert.Contains(t, err.Error(), "underlying error")
	})

	t.Run("Error message with type only", func(t *testing.T) {
		err := &setof.SchemaError{Type: "Query"}
		assert.Contains(t, err.Error(), "type Query")
		assert.NotContains(t, err.Error(), "field")
	})

	t.Run("Is matches its sentinel only", func(t *testing.T) {
		err := setof.NewSchemaError(setof.ErrDuplicateType, "A", "", "", nil)
		assert.True(t, errors.Is(err, setof.ErrDuplicateType))
		assert.False(t, errors.Is(err, setof.ErrRegistryFrozen))

		wrapped := fmt.Errorf("build: %w", err)
		assert.True(t, errors.Is(wrapped, setof.ErrDuplicateType))
		assert.True(t, setof.IsSchemaError(wrapped))
		assert.False(t, setof.IsSchemaError(errors.New("other")))
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := setof.NewSchemaError(setof.ErrUnknownType, "A", "", "", cause)
		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
	})
}

func TestConfigError(t *testing.T) {
	t.Run("Error message with value", func(t *testing.T) {
		err := setof.NewConfigError("cursor.codec", "xml", "unsupported codec")
		assert.Equal(t, `setof: config error for "cursor.codec" (value: xml): unsupported codec`, err.Error())
	})

	t.Run("Error message without value", func(t *testing.T) {
		err := setof.NewConfigError("database.dsn", nil, "cannot be empty")
		assert.NotContains(t, err.Error(), "value:")
	})

	t.Run("Is matches ErrMissingConfig", func(t *testing.T) {
		err := setof.NewConfigError("database.dsn", nil, "missing")
		assert.True(t, errors.Is(err, setof.ErrMissingConfig))
		assert.True(t, setof.IsConfigError(err))
	})
}

func TestCursorError(t *testing.T) {
	cause := errors.New("illegal base64 data")
	err := setof.NewCursorError("!!", "decode", cause)

	assert.Equal(t, `setof: invalid cursor "!!": decode: illegal base64 data`, err.Error())
	assert.True(t, errors.Is(err, setof.ErrInvalidCursor))
	assert.True(t, errors.Is(err, cause))
	assert.True(t, setof.IsCursorError(fmt.Errorf("wrap: %w", err)))
}

func TestIntrospectionError(t *testing.T) {
	cause := errors.New("connection refused")
	err := setof.NewIntrospectionError("procedure", "query", cause)

	assert.Equal(t, "setof: introspection error loading procedure: query: connection refused", err.Error())
	assert.True(t, errors.Is(err, setof.ErrIntrospection))
	assert.True(t, setof.IsIntrospectionError(err))
	assert.False(t, setof.IsIntrospectionError(cause))
}
