// Package langid identifies the language of extracted page text.
package langid

import (
	"github.com/abadojack/whatlanggo"
)

// defaultSampleSize bounds how much text is fed to the detector. A prefix is
// enough for a best-guess and keeps detection cheap on large pages.
const defaultSampleSize = 400

// Whatlang detects languages with the whatlanggo trigram model. Detection is
// non-authoritative; callers must treat low-confidence results as a guess.
type Whatlang struct {
	sampleSize int
}

func New() *Whatlang {
	return &Whatlang{sampleSize: defaultSampleSize}
}

// Detect returns the ISO 639-1 code of the best-guess language and the
// model's confidence. An undetectable text yields an empty code.
func (w *Whatlang) Detect(text string) (string, float64) {
	runes := []rune(text)
	if len(runes) > w.sampleSize {
		runes = runes[:w.sampleSize]
	}

	info := whatlanggo.Detect(string(runes))
	return info.Lang.Iso6391(), info.Confidence
}
