// Package oauth implements the web-flow clients for the supported identity
// providers. Each provider exchanges an authorization code and returns a
// normalized UserInfo; account resolution happens elsewhere.
package oauth

import "context"

// UserInfo is the provider-neutral view of an external user record.
type UserInfo struct {
	Provider   string
	ExternalID string
	Email      string
	Name       string
	Picture    string
}

type Provider interface {
	Name() string
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*UserInfo, error)
}

// Registry holds the configured providers by name.
type Registry struct {
	providers map[string]Provider
	state     *StateSigner
}

func NewRegistry(state *StateSigner, providers ...Provider) *Registry {
	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}
	return &Registry{providers: m, state: state}
}

func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

func (r *Registry) State() *StateSigner { return r.state }
