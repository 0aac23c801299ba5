// Package formatter runs an external reformatter over a document and puts
// the caret back where the user left it.
//
// One Format call moves through these stages:
//
//	Eligible → Snapshotting → Invoking → Splicing → RestoringView
//
// Any stage can fail. The target text is written to a transient file, the
// profile's program is run against it, and the output replaces the target
// range in a single edit. The caret is then relocated with an anchor
// fingerprint taken before formatting; when the fingerprint no longer
// matches, the recorded line and column are used instead.
//
// The transient file is removed and the busy indicator cleared on every
// path. Output identical to the input leaves the document and view untouched.
package formatter
