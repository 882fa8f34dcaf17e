// Package llm wraps the OpenRouter chat completion API used to write video
// scripts and upload copy.
//
// The client enforces JSON-only responses, retries transient HTTP failures
// with capped exponential backoff, and tolerates the formatting quirks models
// add around JSON payloads (code fences, leading prose).
package llm
