// Package cursor provides the selection value used by documents: an anchor
// where the selection started and a head where the caret sits.
package cursor
