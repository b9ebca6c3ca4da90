// Package openai implements the pipeline's embedding and advanced
// document extraction services against OpenAI-compatible APIs.
//
// Both services work with any OpenAI-compatible endpoint (OpenAI,
// Ollama, LocalAI, vLLM). Element extraction requires a vision-capable
// chat model; the page image is sent as a binary content part and the
// model returns structural elements as JSON.
//
// LLMs do not always emit clean JSON even in JSON mode, so responses
// pass through fence stripping and light repair before parsing, with
// up to three generation attempts.
package openai
