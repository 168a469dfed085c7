// Package openai implements generation.Client against an OpenAI-compatible
// Responses API endpoint over plain HTTP.
package openai
