// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lang classifies corpus documents as English or Chinese. The
// corpus mixes both, and downstream exports pick Bible versions by
// document language.
package lang

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pemistahl/lingua-go"
)

// sampleLimit caps how much text is fed to the detector. Front matter
// of a document is enough to classify it.
const sampleLimit = 2000

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// Detect returns the ISO 639-1 code ("en" or "zh") for text, or ""
// when detection is inconclusive or the text is empty.
func Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if len(text) > sampleLimit {
		cut := sampleLimit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.English, lingua.Chinese).
			Build()
	})

	language, ok := detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}

// DetectParagraphs classifies a document from its first paragraphs.
func DetectParagraphs(paragraphs []string) string {
	var b strings.Builder
	for _, p := range paragraphs {
		if b.Len() >= sampleLimit {
			break
		}
		b.WriteString(p)
		b.WriteString("\n")
	}
	return Detect(b.String())
}
