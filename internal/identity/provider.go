// Package identity holds the in-memory session provider used for wiring and
// tests. Real authentication is an external collaborator behind port.Identity.
package identity

import (
	"context"
	"sync"

	"github.com/thriftline/marketplace/internal/domain"
	"github.com/thriftline/marketplace/internal/port"
)

type Provider struct {
	mu     sync.RWMutex
	user   *domain.User
	nextID int
	subs   map[int]func(domain.User)
}

func NewProvider() *Provider {
	return &Provider{
		subs: make(map[int]func(domain.User)),
	}
}

func (p *Provider) Current(_ context.Context) (domain.User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.user == nil {
		return domain.User{}, port.ErrNotSignedIn
	}

	return *p.user, nil
}

func (p *Provider) OnChange(fn func(domain.User)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	id := p.nextID
	p.subs[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *Provider) SignIn(user domain.User) {
	p.notify(&user)
}

func (p *Provider) SignOut() {
	p.notify(nil)
}

func (p *Provider) notify(user *domain.User) {
	p.mu.Lock()
	p.user = user

	var current domain.User
	if user != nil {
		current = *user
	}

	subs := make([]func(domain.User), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(current)
	}
}
