package units_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/benjaminschubert/fetchcache/internal/units"
)

func TestCanConvertFromYaml(t *testing.T) {
	t.Parallel()

	var b units.Bytes
	decoder := yaml.NewDecoder(bytes.NewBufferString("10KiB"))

	require.NoError(t, decoder.Decode(&b))
	require.Equal(t, units.Bytes(10240), b)
}

func TestCanConvertToYaml(t *testing.T) {
	t.Parallel()

	data, err := yaml.Marshal(map[string]units.Bytes{"size": 1536})
	require.NoError(t, err)
	require.Equal(t, "size: 1.50KiB\n", string(data))
}

func TestRejectsNonScalarYaml(t *testing.T) {
	t.Parallel()

	var b units.Bytes
	decoder := yaml.NewDecoder(bytes.NewBufferString("[1, 2]"))
	require.ErrorIs(t, decoder.Decode(&b), units.ErrInvalidByteFormat)
}

func TestCanParse(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		val      string
		expected units.Bytes
	}{
		{"1000", 1000},
		{"1024B", 1024},
		{"10K", 10000},
		{"10KiB", 10240},
		{"12MiB", 12582912},
		{"12GiB", 12884901888},
		{"1.5TiB", 1649267441664},
		{"1.5 TiB", 1649267441664},
		{"10KB", 10000},
		{"12MB", 12000000},
		{"12GB", 12000000000},
		{"1.5TB", 1500000000000},
		{" 1.5 TB ", 1500000000000},
	} {
		t.Run(tc.val, func(t *testing.T) {
			t.Parallel()

			res, err := units.ParseBytes(tc.val)
			require.NoError(t, err)
			require.Equal(t, tc.expected, res)
		})
	}
}

func TestRejectsInvalidFormats(t *testing.T) {
	t.Parallel()

	for _, val := range []string{"", "hello", "-1", "10PB", "1.2.3KB", "KB"} {
		t.Run(val, func(t *testing.T) {
			t.Parallel()

			_, err := units.ParseBytes(val)
			require.ErrorIs(t, err, units.ErrInvalidByteFormat)
		})
	}
}

func TestToString(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		value    units.Bytes
		expected string
	}{
		{1000, "1000B"},
		{1024, "1.00KiB"},
		{8192, "8.00KiB"},
		{3 * 1024 * 1024 * 1024, "3.00GiB"},
	} {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, tc.value.String())
		})
	}
}
