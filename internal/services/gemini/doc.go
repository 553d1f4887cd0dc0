// Package gemini is the Google Gemini provider for criteria extraction.
//
// It mirrors the llm package's CompleteJSON contract so the extractor can
// switch providers through configuration alone. Requests carry the system
// instruction, temperature, max output tokens, and an application/json
// response MIME type. A fresh SDK client is created per call and closed
// afterwards.
package gemini
