// Package anchor encodes a caret position into a fingerprint that survives
// reformatting, and decodes such a fingerprint back into an offset.
//
// A fingerprint is the skeleton of the text before the caret (every
// non-whitespace, non-control character, in order) followed by a run of
// spaces counting the whitespace that sat directly in front of the caret.
// Formatters mostly change how much whitespace separates tokens, not the
// tokens themselves, so the skeleton is matched exactly while whitespace in
// the target text is skipped.
//
// Basic usage:
//
//	fp := anchor.EncodeAt(before, caret)
//	// ... text is reformatted ...
//	if res := anchor.Decode(after, fp); res.Found {
//	    caret = res.Offset
//	}
//
// Decoding is a heuristic. A NotFound result is an expected outcome and
// callers are required to have a fallback.
package anchor
