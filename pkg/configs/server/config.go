package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	// ServerPort is the port kanad listens on.
	ServerPort string `yaml:"port"`

	// SessionSecret signs session cookies. Required.
	SessionSecret string `yaml:"sessionSecret"`

	// SessionTTL discards sessions idle for longer than this.
	SessionTTL Duration `yaml:"sessionTTL"`

	Recognizer RecognizerConfig `yaml:"recognizer"`
}

type RecognizerConfig struct {
	// Endpoint is the base URL of the manga-ocr model server.
	Endpoint string `yaml:"endpoint"`

	// ModelRepo identifies the remote weights snapshot, used when no
	// local weights path is configured.
	ModelRepo string `yaml:"modelRepo"`

	WarmupTimeout    Duration `yaml:"warmupTimeout"`
	RecognizeTimeout Duration `yaml:"recognizeTimeout"`
}

// Duration parses yaml scalars like "30s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("not a duration: %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func LoadServerConfig(filepath string) (*ServerConfig, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

func Unmarshal(conf []byte) (*ServerConfig, error) {
	var out ServerConfig
	if err := yaml.Unmarshal(conf, &out); err != nil {
		return nil, err
	}
	if out.SessionSecret == "" {
		return nil, fmt.Errorf("sessionSecret is required")
	}
	if out.Recognizer.Endpoint == "" {
		return nil, fmt.Errorf("recognizer.endpoint is required")
	}
	return &out, nil
}
