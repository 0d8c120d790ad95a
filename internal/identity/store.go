// Package identity resolves the local user's display name and color,
// preferring durable values and falling back to a prompt and a generator.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/omochice/chat-bridge/internal/storage"
	"github.com/omochice/chat-bridge/pkg/protocol"
	"go.uber.org/zap"
)

const (
	// DefaultUsername is used when storage has no name and the prompt
	// yields nothing.
	DefaultUsername = "Anonymous"
	// DefaultQuestion is asked when no name is stored.
	DefaultQuestion = "What is your name?"
)

// Prompter asks a human a question and blocks until they answer or dismiss
// it. Errors and empty answers are treated alike.
type Prompter func(ctx context.Context, question string) (string, error)

// ColorGenerator returns a display color for the luminosity preference.
type ColorGenerator func(l Luminosity) string

// Store resolves and persists the local identity.
type Store struct {
	kv         storage.Store
	prompt     Prompter
	color      ColorGenerator
	question   string
	luminosity Luminosity
	log        *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithPrompter sets the interactive fallback for a missing username.
func WithPrompter(p Prompter) Option {
	return func(s *Store) { s.prompt = p }
}

// WithColorGenerator replaces the default random color generator.
func WithColorGenerator(g ColorGenerator) Option {
	return func(s *Store) { s.color = g }
}

// WithQuestion sets the prompt text.
func WithQuestion(q string) Option {
	return func(s *Store) {
		if q != "" {
			s.question = q
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// NewStore creates a Store over kv. Without a prompter the username falls
// straight through to DefaultUsername.
func NewStore(kv storage.Store, opts ...Option) *Store {
	s := &Store{
		kv:         kv,
		color:      RandomColor,
		question:   DefaultQuestion,
		luminosity: LuminosityDark,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve returns the identity, writing both fields back to storage before
// returning. The returned error is non-nil only when the write fails.
func (s *Store) Resolve(ctx context.Context) (protocol.Identity, error) {
	username := s.lookup(ctx, storage.KeyUsername)
	if username == "" {
		username = s.ask(ctx)
	}
	if username == "" {
		username = DefaultUsername
	}

	color := s.lookup(ctx, storage.KeyColor)
	if color == "" {
		color = s.color(s.luminosity)
	}

	if err := s.kv.Set(ctx, storage.KeyUsername, username); err != nil {
		return protocol.Identity{}, fmt.Errorf("failed to persist username: %w", err)
	}
	if err := s.kv.Set(ctx, storage.KeyColor, color); err != nil {
		return protocol.Identity{}, fmt.Errorf("failed to persist color: %w", err)
	}

	return protocol.Identity{Username: username, Color: color}, nil
}

// lookup reads key, treating a missing key or read failure as empty.
func (s *Store) lookup(ctx context.Context, key string) string {
	v, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("identity lookup failed", zap.String("key", key), zap.Error(err))
		}
		return ""
	}
	return v
}

func (s *Store) ask(ctx context.Context) string {
	if s.prompt == nil {
		return ""
	}
	answer, err := s.prompt(ctx, s.question)
	if err != nil {
		s.log.Debug("prompt dismissed", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(answer)
}
