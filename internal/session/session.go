// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     session
// Description: A session owns one interpreter instance: alias table,
//              history log, handler registry and dispatcher, plus the
//              persistence wiring that survives reconnects. One session
//              maps to one terminal (one WebSocket connection or one
//              local REPL).
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/msto63/chainterm/internal/handlers"
	"github.com/msto63/chainterm/internal/interp"
	"github.com/msto63/chainterm/internal/store"
	"github.com/msto63/chainterm/pkg/core/config"
	"github.com/msto63/chainterm/pkg/core/logging"
)

// Options configures a new session
type Options struct {
	// Config provides the chain environment and alias bootstrap path.
	// A nil config falls back to defaults.
	Config *config.Config

	// Store persists aliases and history across reconnects. Optional;
	// a nil store keeps all state in memory.
	Store store.KVStore

	// Gateway executes blockchain operations. Optional; without it the
	// chain commands report their offline state.
	Gateway handlers.ChainGateway

	// Services are passed through to handlers verbatim
	Services map[string]interface{}

	// User is the display name for whoami
	User string

	// ID overrides the generated session identifier, used when a client
	// reconnects to an existing session
	ID string

	Logger *logging.Logger
}

// Session binds one interpreter instance to its persistence and chain
// environment
type Session struct {
	id        string
	user      string
	startedAt time.Time

	aliases    *interp.AliasTable
	history    *interp.HistoryLog
	registry   *interp.Registry
	dispatcher *interp.Dispatcher

	store  store.KVStore
	logger *logging.Logger

	// busy rejects overlapping dispatches; a terminal issues one command
	// at a time and concurrent frames on the same session are a client bug
	busy atomic.Bool
}

// New creates a session, registers the command set, restores persisted
// state and applies the alias bootstrap file
func New(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.GetDefault()
	}

	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger = logger.WithField("session", shortID(id))

	s := &Session{
		id:        id,
		user:      opts.User,
		startedAt: time.Now(),
		aliases:   interp.NewAliasTable(logger, nil),
		history:   interp.NewHistoryLog(logger),
		registry:  interp.NewRegistry(logger),
		store:     opts.Store,
		logger:    logger.WithField("component", "session"),
	}

	err := handlers.RegisterBuiltins(s.registry, handlers.Deps{
		Aliases: s.aliases,
		History: s.history,
		Info: handlers.SessionInfo{
			ID:        s.id,
			User:      s.user,
			Network:   cfg.Chain.Network,
			StartedAt: s.startedAt,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register builtins: %w", err)
	}

	err = handlers.RegisterChainCommands(s.registry, handlers.ChainEnv{
		Network:     cfg.Chain.Network,
		RPCEndpoint: cfg.Chain.RPCEndpoint,
		ChainID:     cfg.Chain.ChainID,
		CompilerURL: cfg.Chain.CompilerURL,
	}, opts.Gateway)
	if err != nil {
		return nil, fmt.Errorf("failed to register chain commands: %w", err)
	}

	s.dispatcher, err = interp.NewDispatcher(interp.Options{
		Registry: s.registry,
		Aliases:  s.aliases,
		History:  s.history,
		Logger:   logger,
		Services: opts.Services,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	s.restore(context.Background())

	if cfg.Session.AliasBootstrap != "" {
		s.applyBootstrap(cfg.Session.AliasBootstrap)
	}

	logger.Info("session created", logging.Fields{
		"user":     s.user,
		"commands": s.registry.Size(),
	})
	return s, nil
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// User returns the session user name
func (s *Session) User() string {
	return s.user
}

// StartedAt returns the session creation time
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Dispatch runs one input line through the interpreter. Overlapping
// calls on the same session are rejected rather than queued.
func (s *Session) Dispatch(ctx context.Context, input string) interp.Result {
	if !s.busy.CompareAndSwap(false, true) {
		return interp.Fail(interp.KindExecutionError,
			"Session is busy with a previous command")
	}
	defer s.busy.Store(false)

	result := s.dispatcher.Dispatch(ctx, input)

	if s.store != nil {
		if err := s.Save(ctx); err != nil {
			s.logger.Warn("state save failed", logging.Fields{"error": err.Error()})
		}
	}
	return result
}

// Suggest returns completion candidates for a partial input
func (s *Session) Suggest(partial string) []string {
	return s.dispatcher.GetSuggestions(partial)
}

// Save writes the alias table and history log to the session store
func (s *Session) Save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	aliasData, err := s.aliases.Export()
	if err != nil {
		return fmt.Errorf("alias export failed: %w", err)
	}
	if err := s.store.Set(ctx, store.KeyAliases, aliasData); err != nil {
		return fmt.Errorf("alias save failed: %w", err)
	}

	historyData, err := s.history.Export()
	if err != nil {
		return fmt.Errorf("history export failed: %w", err)
	}
	if err := s.store.Set(ctx, store.KeyHistory, historyData); err != nil {
		return fmt.Errorf("history save failed: %w", err)
	}
	return nil
}

// Close persists the session state. The store itself is owned by the
// caller and stays open.
func (s *Session) Close(ctx context.Context) error {
	return s.Save(ctx)
}

// restore loads persisted aliases and history. Malformed payloads leave
// the fresh empty state in place with a warning, they never fail session
// creation.
func (s *Session) restore(ctx context.Context) {
	if s.store == nil {
		return
	}

	if data, found, err := s.store.Get(ctx, store.KeyAliases); err != nil {
		s.logger.Warn("alias restore failed", logging.Fields{"error": err.Error()})
	} else if found {
		result := s.aliases.Import(data)
		if !result.Success {
			s.logger.Warn("stored aliases unreadable, starting empty", logging.Fields{
				"errors": len(result.Errors),
			})
		} else {
			s.logger.Debug("aliases restored", logging.Fields{"count": result.Imported})
		}
	}

	if data, found, err := s.store.Get(ctx, store.KeyHistory); err != nil {
		s.logger.Warn("history restore failed", logging.Fields{"error": err.Error()})
	} else if found {
		if err := s.history.Import(data); err != nil {
			s.logger.Warn("stored history unreadable, starting empty", logging.Fields{
				"error": err.Error(),
			})
		} else {
			s.logger.Debug("history restored", logging.Fields{"count": s.history.Size()})
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
