// Package mocks provides shared test doubles for the language model client,
// the event emitter and the admin auth services.
//
// Each mock has an …Fn field per method that overrides the default
// behavior, and records its calls for later assertions:
//
//	client := &mocks.MockLLMClient{
//	    CallFn: func(ctx context.Context, model string, history []generation.Message,
//	        opts generation.CallOptions) (*generation.Response, error) {
//	        return nil, generation.ErrContentBlocked
//	    },
//	}
//
// Without CallFn, MockLLMClient answers every pipeline stage with a valid
// reply, so a queue run against it publishes an article.
package mocks
