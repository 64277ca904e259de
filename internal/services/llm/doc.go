// Package llm provides a chat client for OpenAI-compatible completion
// endpoints, used to ask a model for JSON answers.
//
// The default endpoint is Gemini's OpenAI compatibility layer, so a Gemini API
// key is all that is needed. Each call is a single request bounded by the
// configured timeout; failures are returned to the caller and never retried.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive a JSON payload.
// Client.HealthCheck: verify API key and model availability.
// DecodeLLMJSON: decode a payload, tolerating code fences and prose around it.
package llm
