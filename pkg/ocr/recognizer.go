// Package ocr is the boundary wrapping the external handwriting
// recognition model. The model itself is a black box behind the
// Recognizer interface; this app only compares its output with the
// reference table.
package ocr

import (
	"context"
	"errors"
)

// ErrModelUnavailable is returned when the model cannot be loaded or
// reached. Unrecoverable at request level; surfaced to the user as a
// temporary outage.
var ErrModelUnavailable = errors.New("recognition model is unavailable")

// ErrEmptyRecognition is returned when the model output is empty after
// trimming. Callers grade this as an incorrect answer, never a crash.
var ErrEmptyRecognition = errors.New("recognition returned no characters")

// ErrEmptyImage is returned when Recognize is called without image data.
var ErrEmptyImage = errors.New("no image data to recognize")

type Health struct {
	Healthy     bool   `json:"healthy"`
	ModelLoaded bool   `json:"modelLoaded"`
	Message     string `json:"message,omitempty"`
}

// Recognizer recognizes a single hand-drawn glyph in a PNG image.
type Recognizer interface {
	// Recognize returns the recognized glyph: the first character of the
	// model's trimmed output. The model may guess more than one
	// character; only the first one is used for comparison.
	//
	// The underlying model is expensive to load. Implementations load it
	// at most once per process and reuse it across calls.
	Recognize(ctx context.Context, png []byte) (string, error)

	// Health reports whether the model is reachable and loaded.
	Health(ctx context.Context) Health
}
