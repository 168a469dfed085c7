// Package domain contains the core entities of the daily news generator:
// generation tasks, generation profiles, daily word pools and the articles
// produced for them. It is independent of storage and of the LLM provider.
package domain
