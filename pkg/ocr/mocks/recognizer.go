// this package provides a "mock" implementation of the recognizer for testing.
package mocks

import (
	"context"
	"errors"

	"github.com/dpetrashka/kanaweb/pkg/ocr"
)

type Recognizer struct {
	Impl struct {
		Recognize func(ctx context.Context, png []byte) (string, error)
		Health    func(ctx context.Context) ocr.Health
	}
	Calls struct {
		Recognize []struct{ PNG []byte }
		Health    int
	}
}

var _ ocr.Recognizer = &Recognizer{}

func NewRecognizer() *Recognizer {
	return &Recognizer{}
}

func (m *Recognizer) Recognize(ctx context.Context, png []byte) (string, error) {
	m.Calls.Recognize = append(m.Calls.Recognize, struct{ PNG []byte }{PNG: png})
	if m.Impl.Recognize != nil {
		return m.Impl.Recognize(ctx, png)
	}
	panic(errors.New("it should not be called"))
}

func (m *Recognizer) Health(ctx context.Context) ocr.Health {
	m.Calls.Health += 1
	if m.Impl.Health != nil {
		return m.Impl.Health(ctx)
	}
	return ocr.Health{Healthy: true, ModelLoaded: true}
}
