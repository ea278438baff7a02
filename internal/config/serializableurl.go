package config

import (
	"errors"
	"net/url"

	"gopkg.in/yaml.v3"
)

var ErrMustBeScalar = errors.New("URL must be a scalar")

type SerializableURL struct {
	URL *url.URL
}

func (s *SerializableURL) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return ErrMustBeScalar
	}

	if node.Value == "" {
		s.URL = nil
		return nil
	}

	parsed, err := url.Parse(node.Value)
	if err != nil {
		return err
	}

	s.URL = parsed
	return nil
}

func (s SerializableURL) MarshalYAML() (any, error) {
	return s.String(), nil
}

// String returns the URL, with its password redacted.
func (s SerializableURL) String() string {
	if s.URL == nil {
		return ""
	}
	return s.URL.Redacted()
}

func (s SerializableURL) IsSet() bool {
	return s.URL != nil
}
