// Package pdf converts an in-memory PDF byte stream into plain text.
//
// Extraction is whole-document and in-memory; the upstream download layer
// caps how many bytes reach this package. Image-only PDFs yield an empty
// string rather than an error.
package pdf
