package models

// ScriptElement is a script tag lifted out of the rendered DOM as plain
// data, decoupling the crawler from any particular automation binding.
// Exactly one of Src or Inline is meaningful: Src for external scripts,
// Inline for script bodies. Err records a failed attribute or content read,
// keeping the element in the inventory instead of dropping it. An element
// with all fields empty carries no content to fingerprint and is skipped by
// the crawler.
type ScriptElement struct {
	Src    string
	Inline string
	Err    string
}
