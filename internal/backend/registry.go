// Package backend resolves logical service names to their base URLs.
package backend

import (
	"fmt"

	"sales-gateway/internal/config"
)

// Name identifies one of the services behind the gateway.
type Name string

// The fixed set of backends the route table refers to.
const (
	Subscription Name = "subscription"
	Car          Name = "car"
	User         Name = "user"
)

// Target is a resolved backend. It is never modified after startup.
type Target struct {
	Name    Name
	BaseURL string
}

// URL joins the base URL and an absolute path by concatenation.
func (t Target) URL(path string) string {
	return t.BaseURL + path
}

// Registry maps backend names to targets. It is built once from config and
// only read afterwards, so it is safe for concurrent use without locking.
type Registry struct {
	targets map[Name]Target
}

// NewRegistry builds the registry from the configured backend URLs.
func NewRegistry(cfg *config.Config) *Registry {
	return &Registry{
		targets: map[Name]Target{
			Subscription: {Name: Subscription, BaseURL: cfg.Backends.SubscriptionURL},
			Car:          {Name: Car, BaseURL: cfg.Backends.CarURL},
			User:         {Name: User, BaseURL: cfg.Backends.UserURL},
		},
	}
}

// Resolve returns the target registered under name. Routes only ever name
// the fixed set, so an unknown name is a programming error and panics.
func (r *Registry) Resolve(name Name) Target {
	t, ok := r.targets[name]
	if !ok {
		panic(fmt.Sprintf("backend: unknown service %q", name))
	}
	return t
}

// Targets returns every registered target in a stable order.
func (r *Registry) Targets() []Target {
	return []Target{r.targets[Subscription], r.targets[Car], r.targets[User]}
}
