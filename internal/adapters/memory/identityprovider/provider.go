package identityprovider

import (
	"context"
	"crypto/rand"
	"math/big"
	"sync"

	"github.com/google/uuid"

	"github.com/newmeca/membership-api/internal/domain"
	"github.com/newmeca/membership-api/internal/ports/out/identityprovider"
)

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Provider is an in-memory implementation of identityprovider.Provider. It
// mints auth-user IDs locally and records created users for inspection in
// tests. It is safe for concurrent use.
type Provider struct {
	mu      sync.Mutex
	created map[domain.ProfileID]identityprovider.NewUser

	// FailWith, when non-nil, is returned from every CreateUser call. Lets
	// tests exercise per-row failure collection in the repair batch.
	FailWith error
}

func NewProvider() *Provider {
	return &Provider{
		created: make(map[domain.ProfileID]identityprovider.NewUser),
	}
}

func (p *Provider) CreateUser(ctx context.Context, u identityprovider.NewUser) (domain.ProfileID, error) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailWith != nil {
		return "", p.FailWith
	}
	id := domain.ProfileID(uuid.NewString())
	p.created[id] = u
	return id, nil
}

func (p *Provider) GeneratePassword(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failure is unrecoverable for credential generation.
			panic(err)
		}
		b[i] = passwordAlphabet[idx.Int64()]
	}
	return string(b)
}

// CreatedUsers returns a copy of every provisioned user keyed by id.
func (p *Provider) CreatedUsers() map[domain.ProfileID]identityprovider.NewUser {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[domain.ProfileID]identityprovider.NewUser, len(p.created))
	for k, v := range p.created {
		out[k] = v
	}
	return out
}
