// Package practice grades user answers against the reference table.
//
// A wrong answer is a normal outcome, not an error: Result carries it
// back to the view as plain negative feedback.
package practice

import (
	"github.com/dpetrashka/kanaweb/pkg/kana"
)

type Result struct {
	// Correct is true when the answer matches the reference exactly.
	Correct bool `json:"correct"`

	// Expected is the reference value: the glyph for writing practice,
	// the romanization for reading practice.
	Expected string `json:"expected"`

	// Given is what the user produced: the recognized character for
	// writing practice, the typed romaji for reading practice.
	Given string `json:"given"`
}

// GradeWriting compares the recognized character with the expected
// glyph. An empty recognized string (the model saw nothing readable)
// grades as incorrect.
func GradeWriting(expected kana.Glyph, recognized string) Result {
	return Result{
		Correct:  recognized != "" && recognized == string(expected),
		Expected: string(expected),
		Given:    recognized,
	}
}

// GradeReading compares the typed romaji with the one correct reading
// of the prompt glyph. Exact string equality, case-sensitive, no
// normalization.
func GradeReading(mode kana.Script, prompt kana.Glyph, answer string) (Result, error) {
	expected, err := kana.Romanize(mode, prompt)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Correct:  answer == string(expected),
		Expected: string(expected),
		Given:    answer,
	}, nil
}
