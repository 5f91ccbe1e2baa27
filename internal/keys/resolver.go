package keys

import "context"

// Resolver yields the active key for reads and writes that do not name one.
// Locale resolvers use the context locale, then the configured default locale.
// Channel resolvers use the context channel, then the declaration default key.
type Resolver struct {
	domain        Domain
	defaultLocale Key
	defaultKey    Key
}

// NewResolver builds a resolver for the given domain.
func NewResolver(domain Domain, defaultLocale, defaultKey Key) Resolver {
	return Resolver{
		domain:        domain,
		defaultLocale: defaultLocale,
		defaultKey:    defaultKey,
	}
}

// Domain reports the resolver's key domain.
func (r Resolver) Domain() Domain { return r.domain }

// Current returns the active key for ctx.
func (r Resolver) Current(ctx context.Context) Key {
	if r.domain == DomainChannel {
		if channel, ok := Channel(ctx); ok {
			return channel
		}
		return r.defaultKey
	}
	if locale, ok := Locale(ctx); ok {
		return locale
	}
	return r.defaultLocale
}
