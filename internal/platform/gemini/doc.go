// Package gemini adapts Google's Gemini API to the generation.Client
// interface.
//
// Conversation history is translated into genai contents: system messages
// become the request's SystemInstruction, user messages keep the user role
// and assistant messages take the model role. JSON calls set the response
// MIME type, and web search calls attach the Google Search tool; the
// candidate's grounding metadata is returned as raw Metadata so the
// pipeline can collect the cited URLs.
//
// Transient API failures (HTTP 429, 5xx and network errors) are retried
// with generation.RetryPolicy. Safety blocks and malformed responses are
// permanent.
package gemini
