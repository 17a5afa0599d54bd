// Package redis is the rueidis-backed cache holding the encoded catalog snapshot.
package redis

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/rentdex/internal/db"
)

var _ db.Cache = (*Store)(nil)

// Connection defaults.
const (
	DefaultClientName   = "rentdex"
	DefaultDialTimeout  = 5 * time.Second
	DefaultWriteTimeout = 10 * time.Second

	readyInterval = 100 * time.Millisecond
)

// Config describes the snapshot cache connection. Zero durations and an
// empty ClientName fall back to the defaults above.
type Config struct {
	Addrs        []string
	Password     string
	DB           int
	ClientName   string
	DialTimeout  time.Duration
	WriteTimeout time.Duration
}

func (c Config) clientOption() (rueidis.ClientOption, error) {
	if len(c.Addrs) == 0 {
		return rueidis.ClientOption{}, errors.New("addrs is required")
	}
	if c.DB < 0 {
		return rueidis.ClientOption{}, fmt.Errorf("db must be >= 0, got %d", c.DB)
	}
	return rueidis.ClientOption{
		InitAddress:      c.Addrs,
		Password:         c.Password,
		SelectDB:         c.DB,
		ClientName:       cmp.Or(c.ClientName, DefaultClientName),
		Dialer:           net.Dialer{Timeout: cmp.Or(c.DialTimeout, DefaultDialTimeout)},
		ConnWriteTimeout: cmp.Or(c.WriteTimeout, DefaultWriteTimeout),
		// The snapshot is read once per index rebuild; server-assisted
		// client caching would only keep a second copy of it.
		DisableCache: true,
	}, nil
}

// Store is the snapshot cache backend.
type Store struct {
	client rueidis.Client
}

// NewStore dials the cache. Use WaitForReady to block until it answers.
func NewStore(cfg Config) (*Store, error) {
	opt, err := cfg.clientOption()
	if err != nil {
		return nil, err
	}
	client, err := rueidis.NewClient(opt)
	if err != nil {
		return nil, fmt.Errorf("connect %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady blocks until the cache answers PING or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, "cache", timeout, readyInterval)
}

// Close releases the client's connections.
func (s *Store) Close() { s.client.Close() }

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder { return s.client.B() }
