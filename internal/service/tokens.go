package service

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// maxInputTokens is the hard ceiling applied before any generation call.
// Oversized input fails with ErrInputTooLarge instead of being truncated.
const maxInputTokens = 100_000

// TokenCounter counts generation tokens for the configured model.
type TokenCounter interface {
	Count(text string) (int, error)
}

// TiktokenCounter counts tokens with the model's BPE encoding. The encoding
// is resolved once and reused; Count is safe for concurrent use.
type TiktokenCounter struct {
	model string

	once     sync.Once
	encoding *tiktoken.Tiktoken
	initErr  error
}

// NewTiktokenCounter creates a token counter for the given model.
func NewTiktokenCounter(model string) *TiktokenCounter {
	return &TiktokenCounter{model: model}
}

// Count returns the number of tokens in text.
func (c *TiktokenCounter) Count(text string) (int, error) {
	c.once.Do(func() {
		c.encoding, c.initErr = tiktoken.EncodingForModel(c.model)
	})
	if c.initErr != nil {
		return 0, fmt.Errorf("failed to load encoding for model %q: %w", c.model, c.initErr)
	}
	return len(c.encoding.Encode(text, nil, nil)), nil
}
