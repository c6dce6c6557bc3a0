// Package gemini provides the summarization client backing the
// summarize_pdf tool.
//
// A summary request is a single user turn: the caller's prompt followed by
// the extracted document text. The response is streamed and the fragments
// are concatenated in arrival order; a mid-stream error discards all partial
// output.
package gemini
