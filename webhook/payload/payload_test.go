package payload

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("success - object keeps numbers exact", func(t *testing.T) {
		v, err := Parse([]byte(`{"subscription_contract_id": 9998878778, "total_price": 10.10}`))
		require.NoError(t, err)

		obj, ok := Object(v)
		require.True(t, ok)
		assert.Equal(t, json.Number("9998878778"), obj["subscription_contract_id"])
		assert.Equal(t, json.Number("10.10"), obj["total_price"])
	})

	t.Run("success - array is parsed but is not an object", func(t *testing.T) {
		v, err := Parse([]byte(`[{"id": 1}]`))
		require.NoError(t, err)

		_, ok := Object(v)
		assert.False(t, ok)
	})

	t.Run("success - surrounding whitespace", func(t *testing.T) {
		_, err := Parse([]byte("\n  {}\n"))
		require.NoError(t, err)
	})

	t.Run("error - malformed json", func(t *testing.T) {
		_, err := Parse([]byte(`{"id": `))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unmarshaling payload")
	})

	t.Run("error - empty body", func(t *testing.T) {
		_, err := Parse(nil)
		require.Error(t, err)
	})

	t.Run("error - trailing data", func(t *testing.T) {
		_, err := Parse([]byte(`{} {}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected data")
	})
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string verbatim", "9a453d81-d41d-403e-806f-714dee215ff9", "9a453d81-d41d-403e-806f-714dee215ff9"},
		{"number literal", json.Number("12345678901234567890"), "12345678901234567890"},
		{"null", nil, ""},
		{"bool", true, "true"},
		{"object", map[string]any{"a": json.Number("1")}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := String(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
