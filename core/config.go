package core

import "fmt"

// FlowConfig is the static configuration of a sign-in flow. The handler
// treats it as read-only.
type FlowConfig struct {
	// Providers lists the requested provider ids in the order the host
	// application offers them.
	Providers []string

	// EnableAnonymousUpgrade makes an anonymous current user an upgrade
	// candidate: completing a sign-in that would discard the anonymous
	// session's data is reported as a merge conflict instead of performed
	// silently.
	EnableAnonymousUpgrade bool
}

// Normalize returns a copy with duplicate provider ids removed, first
// occurrence wins.
func (c FlowConfig) Normalize() FlowConfig {
	if len(c.Providers) == 0 {
		return c
	}
	seen := make(map[string]struct{}, len(c.Providers))
	providers := make([]string, 0, len(c.Providers))
	for _, p := range c.Providers {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		providers = append(providers, p)
	}
	c.Providers = providers
	return c
}

// Validate rejects configurations with no providers or blank provider ids.
func (c FlowConfig) Validate() error {
	if len(c.Providers) == 0 {
		return ErrNoProviders
	}
	for i, p := range c.Providers {
		if p == "" {
			return fmt.Errorf("provider %d: %w", i, ErrUnknownProvider)
		}
	}
	return nil
}

// Requests reports whether provider is part of the configured flow.
func (c FlowConfig) Requests(provider string) bool {
	for _, p := range c.Providers {
		if p == provider {
			return true
		}
	}
	return false
}
