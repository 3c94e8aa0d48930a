package address

import (
	"context"

	"github.com/jmehdipour/email-dispatch/internal/util"
)

// BlacklistStore is the persistent deny-list (see repository.BlacklistRepository).
type BlacklistStore interface {
	Exists(ctx context.Context, email string) (bool, error)
}

// StoreBlacklist checks addresses against a BlacklistStore, case-insensitively.
type StoreBlacklist struct {
	store BlacklistStore
}

func NewStoreBlacklist(store BlacklistStore) *StoreBlacklist {
	return &StoreBlacklist{store: store}
}

func (b *StoreBlacklist) IsBlacklisted(ctx context.Context, addr string) (bool, error) {
	return b.store.Exists(ctx, util.NormalizeAddress(addr))
}
