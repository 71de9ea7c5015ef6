package utils

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// LinguaDetector builds its detector lazily; loading the language models is
// the expensive part.
type LinguaDetector struct {
	languages []lingua.Language
	once      sync.Once
	detector  lingua.LanguageDetector
}

// NewLinguaDetector limits detection to the languages reviews are usually
// recorded in.
func NewLinguaDetector() *LinguaDetector {
	return &LinguaDetector{languages: []lingua.Language{
		lingua.Spanish,
		lingua.English,
		lingua.French,
		lingua.Italian,
		lingua.Portuguese,
		lingua.German,
		lingua.Catalan,
	}}
}

func (d *LinguaDetector) DetectLanguage(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	d.once.Do(func() {
		d.detector = lingua.NewLanguageDetectorBuilder().FromLanguages(d.languages...).Build()
	})
	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(language.IsoCode639_1().String()), true
}
