package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer runs one text-recognition pass over an already-preprocessed
// bitmap. psm is the page segmentation mode (1..13), the engine's
// assumption about page layout. Implementations must be safe for
// concurrent calls.
type Recognizer interface {
	Recognize(png []byte, psm int) (string, error)
}

// TesseractRecognizer recognizes text via a local Tesseract installation.
// A fresh client is created per call: gosseract clients are not safe for
// concurrent use, and per-pass configuration (the segmentation mode)
// differs anyway.
type TesseractRecognizer struct {
	languages []string
}

// NewTesseractRecognizer creates a recognizer for the given language set,
// e.g. "eng+vie".
func NewTesseractRecognizer(languages string) *TesseractRecognizer {
	return &TesseractRecognizer{
		languages: strings.Split(languages, "+"),
	}
}

// Recognize implements Recognizer.
func (r *TesseractRecognizer) Recognize(png []byte, psm int) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.languages...); err != nil {
		return "", fmt.Errorf("tesseract: set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(psm)); err != nil {
		return "", fmt.Errorf("tesseract: set psm %d: %w", psm, err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("tesseract: set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: recognize (psm %d): %w", psm, err)
	}
	return text, nil
}
