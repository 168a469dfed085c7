// Package generation turns a day's candidate words and a topic preference
// into a structured, three-level news article.
//
// The Pipeline drives four sequential calls to a generative text Client
// (word selection, web research, draft writing and JSON conversion) over a
// single append-only Conversation. Each stage validates its output before
// the next begins, and every failure is reported as a *StageError naming
// the stage. Provider adapters live in internal/platform/gemini and
// internal/platform/openai.
package generation
