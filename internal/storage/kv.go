package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dyike/QuantumGPT/consts"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// KV is the per-client key-value store behind the watchlist and alerts.
// Values are opaque bytes; each namespace is one client.
type KV interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
	List(ctx context.Context, namespace string) ([]string, error)
	Delete(ctx context.Context, namespace, key string) error
	Namespaces(ctx context.Context) ([]string, error)
	Close() error
}

func getJSON(ctx context.Context, kv KV, ns, key string, v any) error {
	data, err := kv.Get(ctx, ns, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s/%s: %w", ns, key, err)
	}
	return nil
}

func setJSON(ctx context.Context, kv KV, ns, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", ns, key, err)
	}
	return kv.Set(ctx, ns, key, data)
}

func namespace(clientID string) string {
	if id := strings.TrimSpace(clientID); id != "" {
		return id
	}
	return consts.DefaultClientID
}
