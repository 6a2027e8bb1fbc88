package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected ByteSize
		wantErr  bool
	}{
		{"bytes", "1024", 1024, false},
		{"kibibytes", "5KiB", 5 * 1024, false},
		{"mebibytes", "10MiB", 10 * 1024 * 1024, false},
		{"decimal megabytes", "5MB", 5 * 1000 * 1000, false},
		{"with space", "5 MiB", 5 * 1024 * 1024, false},
		{"lowercase", "5mib", 5 * 1024 * 1024, false},
		{"fractional", "1.5MiB", ByteSize(1.5 * 1024 * 1024), false},
		{"zero", "0", 0, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, err := ParseByteSize(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, size)
		})
	}
}

func TestByteSize_UnmarshalText(t *testing.T) {
	var b ByteSize
	require.NoError(t, b.UnmarshalText([]byte("5MiB")))
	assert.Equal(t, ByteSize(5*1024*1024), b)
}

func TestByteSize_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected ByteSize
	}{
		{"string format", `"5MiB"`, 5 * 1024 * 1024},
		{"string with space", `"5 MiB"`, 5 * 1024 * 1024},
		{"bytes int", `5242880`, 5242880},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b ByteSize
			require.NoError(t, json.Unmarshal([]byte(tt.json), &b))
			assert.Equal(t, tt.expected, b)
		})
	}
}

func TestByteSize_RoundTrip(t *testing.T) {
	b := ByteSize(5 * 1024 * 1024)
	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, `"5.0 MiB"`, string(data))

	var back ByteSize
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, b, back)
}

func TestByteSize_String(t *testing.T) {
	tests := []struct {
		name     string
		size     ByteSize
		expected string
	}{
		{"bytes", 500, "500 B"},
		{"kibibytes", 5 * 1024, "5.0 KiB"},
		{"mebibytes", 10 * 1024 * 1024, "10 MiB"},
		{"zero", 0, "0 B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.size.String())
		})
	}
}
