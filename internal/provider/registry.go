package provider

import "strings"

// Registry resolves provider names to clients. Lookup is case-insensitive;
// an empty name resolves to the configured default. Unknown names yield nil
// so the caller can surface a bad-request result.
type Registry struct {
	clients     map[string]Client
	defaultName string
}

// NewRegistry creates an empty registry with the given default provider name.
func NewRegistry(defaultName string) *Registry {
	return &Registry{
		clients:     make(map[string]Client),
		defaultName: strings.ToLower(defaultName),
	}
}

// Register adds a client under name, replacing any previous registration.
func (r *Registry) Register(name string, c Client) {
	r.clients[strings.ToLower(name)] = c
}

// Resolve returns the client for name, or nil when the name is unknown.
func (r *Registry) Resolve(name string) Client {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = r.defaultName
	}
	return r.clients[key]
}

// DefaultName returns the registry's default provider name.
func (r *Registry) DefaultName() string {
	return r.defaultName
}
