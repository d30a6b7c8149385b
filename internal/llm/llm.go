// Package llm defines the interface for generative-language completion.
//
// Schwaetzbot ships with two backends: Gemini (default, raw REST) and
// OpenAI (chat completions SDK). A third implementation, Disabled, serves
// a fixed maintenance message when the generative backend is switched off
// by configuration.
package llm

import "context"

// MaintenanceMessage is returned in place of a completion when the
// generative backend is disabled.
const MaintenanceMessage = "L'assistant est actuellement en mode maintenance. Veuillez réessayer plus tard."

// Completer produces a text completion for a prompt.
type Completer interface {
	// Name returns the backend identifier (e.g., "gemini", "openai").
	Name() string

	// Complete sends the prompt to the generative service and returns the
	// raw completion text.
	Complete(ctx context.Context, promptText string) (string, error)

	// Close releases any resources held by the completer.
	Close() error
}

// CompletionError wraps a transport failure or non-success status from the
// generative service. It is terminal for the turn.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string { return "completion: " + e.Err.Error() }

func (e *CompletionError) Unwrap() error { return e.Err }

// Disabled is a Completer that performs no network call and always answers
// with the maintenance message.
type Disabled struct{}

// NewDisabled creates the disabled completer.
func NewDisabled() *Disabled { return &Disabled{} }

// Name returns the backend identifier.
func (*Disabled) Name() string { return "disabled" }

// Complete returns the fixed maintenance message.
func (*Disabled) Complete(ctx context.Context, promptText string) (string, error) {
	return MaintenanceMessage, nil
}

// Close is a no-op.
func (*Disabled) Close() error { return nil }
