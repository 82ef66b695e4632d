package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringGateway keeps values in the OS credential store, one secret per key
// under a fixed service name.
type KeyringGateway struct {
	service string
}

func NewKeyringGateway(service string) *KeyringGateway {
	return &KeyringGateway{service: service}
}

func (g *KeyringGateway) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, err := keyring.Get(g.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: keyring get %s: %v", ErrStorageUnavailable, key, err)
	}
	return []byte(v), true, nil
}

func (g *KeyringGateway) Set(_ context.Context, key string, value []byte) error {
	if err := keyring.Set(g.service, key, string(value)); err != nil {
		return fmt.Errorf("%w: keyring set %s: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

func (g *KeyringGateway) Remove(_ context.Context, key string) error {
	if err := keyring.Delete(g.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: keyring delete %s: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}
