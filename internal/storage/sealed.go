package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
)

// SealedKV encrypts values at rest and hashes keys so the cache file does not
// carry user identifiers or salaries in clear text.
type SealedKV struct {
	next KV
	key  []byte
}

// NewSealedKV wraps next. key must be chacha20poly1305.KeySize bytes.
func NewSealedKV(next KV, key []byte) (*SealedKV, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("cache key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	return &SealedKV{next: next, key: append([]byte(nil), key...)}, nil
}

// Load decrypts the value stored under key
func (s *SealedKV) Load(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.next.Load(ctx, s.hashKey(key))
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	if len(sealed) < aead.NonceSize() {
		return nil, fmt.Errorf("sealed value too short: %d bytes", len(sealed))
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("failed to open sealed value: %w", err)
	}
	return plain, nil
}

// Save encrypts value and stores it under the hashed key
func (s *SealedKV) Save(ctx context.Context, key string, value []byte) error {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(value)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	return s.next.Save(ctx, s.hashKey(key), aead.Seal(nonce, nonce, value, []byte(key)))
}

func (s *SealedKV) hashKey(key string) string {
	h, _ := blake2b.New256(s.key)
	h.Write([]byte(key))
	return hex.EncodeToString(h.Sum(nil))
}

// Prune forwards to the wrapped store when it supports pruning
func (s *SealedKV) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	if p, ok := s.next.(Pruner); ok {
		return p.Prune(ctx, olderThan)
	}
	return 0, nil
}
