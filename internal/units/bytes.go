// Package units contains the human-readable quantities used in the
// configuration.
package units

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	bytesFormat          = regexp.MustCompile(`^(\d+(\.\d+)?)\s*(([KMGT])(i?))?B?$`)
	prefixes             = "BKMGT"
	ErrInvalidByteFormat = errors.New("not a valid bytes format. Must match " + bytesFormat.String())
)

// Bytes is a size, written like "512", "10KB" (powers of 1000) or "10KiB"
// (powers of 1024).
type Bytes int64

func ParseBytes(value string) (Bytes, error) {
	groups := bytesFormat.FindStringSubmatch(strings.TrimSpace(value))
	if groups == nil {
		return 0, fmt.Errorf("%w, got %q", ErrInvalidByteFormat, value)
	}

	number, err := strconv.ParseFloat(groups[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidByteFormat, err)
	}

	base := 1000.0
	if groups[5] != "" {
		base = 1024
	}

	exponent := 0
	if groups[4] != "" {
		exponent = strings.IndexByte(prefixes, groups[4][0])
	}

	size := number * math.Pow(base, float64(exponent))
	if size > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %s overflows", ErrInvalidByteFormat, value)
	}
	return Bytes(size), nil
}

func (b *Bytes) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return ErrInvalidByteFormat
	}

	val, err := ParseBytes(value.Value)
	if err != nil {
		return err
	}

	*b = val
	return nil
}

func (b Bytes) MarshalYAML() (any, error) {
	return b.String(), nil
}

func (b Bytes) String() string {
	value := float64(b)
	idx := 0

	for value >= 1024 && idx < len(prefixes)-1 {
		value /= 1024
		idx++
	}

	if idx == 0 {
		return strconv.FormatInt(int64(b), 10) + "B"
	}
	return fmt.Sprintf("%.2f%ciB", value, prefixes[idx])
}
