// Package interpreter turns raw AI text into typed values or typed failures.
package interpreter

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/timber/pkg/infrastructure/ai"
)

// DefaultTimeout bounds every generator call when no timeout is configured
const DefaultTimeout = 60 * time.Second

// Interpreter wraps a generator with the precondition check, a deadline,
// the in-flight guard and logging.
type Interpreter struct {
	generator ai.Generator
	timeout   time.Duration
	guard     *Guard
	logger    *zap.Logger
}

// New creates an interpreter. A nil generator makes every request fail with ErrAIUnavailable.
func New(generator ai.Generator, timeout time.Duration, logger *zap.Logger) *Interpreter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interpreter{
		generator: generator,
		timeout:   timeout,
		guard:     NewGuard(),
		logger:    logger,
	}
}

// Available reports whether a generator is configured
func (i *Interpreter) Available() bool {
	return i != nil && i.generator != nil
}

// Generate asks the generator for text on behalf of feature
func (i *Interpreter) Generate(ctx context.Context, feature, prompt string, opts ai.Options) (string, error) {
	if !i.Available() {
		return "", ErrAIUnavailable
	}

	release, err := i.guard.Enter(feature)
	if err != nil {
		i.logger.Warn("AI request rejected", zap.String("feature", feature), zap.Error(err))
		return "", err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	start := time.Now()
	text, err := i.generator.Generate(ctx, prompt, opts)
	elapsed := time.Since(start)
	if err != nil {
		i.logger.Warn("AI request failed",
			zap.String("feature", feature),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		return "", &TransportError{Feature: feature, Err: err}
	}

	i.logger.Debug("AI response received",
		zap.String("feature", feature),
		zap.Duration("elapsed", elapsed),
		zap.Int("bytes", len(text)))
	return text, nil
}

// Logger returns the interpreter's logger
func (i *Interpreter) Logger() *zap.Logger {
	return i.logger
}
