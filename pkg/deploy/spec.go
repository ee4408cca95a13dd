// Package deploy builds the k8s resources running the kana practice
// service: the kanad container with its manga-ocr model sidecar, a
// Service and Ingress in front of it, and a CPU-based autoscaler.
package deploy

import (
	"fmt"
	"os"

	gcrname "github.com/google/go-containerregistry/pkg/name"
	"gopkg.in/yaml.v3"
)

type Spec struct {
	// Namespace to deploy into.
	Namespace string `yaml:"namespace"`

	// AppImage is the kanad container image. Required.
	AppImage string `yaml:"appImage"`

	// ModelImage is the manga-ocr model server image, run as a sidecar
	// of each kanad pod. Required.
	ModelImage string `yaml:"modelImage"`

	// Host exposes the service on this hostname. When empty, no
	// Ingress is generated.
	Host string `yaml:"host,omitempty"`

	// TLSSecret is a k8s secret holding the certificate for Host.
	TLSSecret string `yaml:"tlsSecret,omitempty"`

	// AllowFrom restricts ingress to these source CIDRs. Empty = open.
	AllowFrom []string `yaml:"allowFrom,omitempty"`

	MinReplicas      int32 `yaml:"minReplicas"`
	MaxReplicas      int32 `yaml:"maxReplicas"`
	TargetCPUPercent int32 `yaml:"targetCPUPercent"`

	// ModelCacheSize bounds the volume where the sidecar caches model
	// weights fetched from the published snapshot.
	ModelCacheSize string `yaml:"modelCacheSize"`
}

const (
	defaultNamespace      = "kana"
	defaultMinReplicas    = 1
	defaultMaxReplicas    = 5
	defaultTargetCPU      = 50
	defaultModelCacheSize = "5Gi"
)

// Load reads a deployment spec file, fills defaults and validates it.
func Load(filepath string) (Spec, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return Spec{}, err
	}
	var s Spec
	if err := yaml.Unmarshal(content, &s); err != nil {
		return Spec{}, err
	}
	s = s.withDefaults()
	if err := s.Validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

func (s Spec) withDefaults() Spec {
	if s.Namespace == "" {
		s.Namespace = defaultNamespace
	}
	if s.MinReplicas == 0 {
		s.MinReplicas = defaultMinReplicas
	}
	if s.MaxReplicas == 0 {
		s.MaxReplicas = defaultMaxReplicas
	}
	if s.TargetCPUPercent == 0 {
		s.TargetCPUPercent = defaultTargetCPU
	}
	if s.ModelCacheSize == "" {
		s.ModelCacheSize = defaultModelCacheSize
	}
	return s
}

func (s Spec) Validate() error {
	for field, image := range map[string]string{
		"appImage":   s.AppImage,
		"modelImage": s.ModelImage,
	} {
		if image == "" {
			return fmt.Errorf("%s is required", field)
		}
		if _, err := gcrname.ParseReference(image); err != nil {
			return fmt.Errorf("%s is not a container image reference: %w", field, err)
		}
	}
	if s.MinReplicas < 1 || s.MaxReplicas < s.MinReplicas {
		return fmt.Errorf(
			"replica range %d..%d is invalid", s.MinReplicas, s.MaxReplicas,
		)
	}
	if s.TargetCPUPercent < 1 || 100 < s.TargetCPUPercent {
		return fmt.Errorf("targetCPUPercent %d is out of 1..100", s.TargetCPUPercent)
	}
	if s.TLSSecret != "" && s.Host == "" {
		return fmt.Errorf("tlsSecret needs host")
	}
	return nil
}
