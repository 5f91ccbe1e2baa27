package keys

import "context"

type contextKey string

const (
	localeContextKey  contextKey = "translatable.keys.locale"
	channelContextKey contextKey = "translatable.keys.channel"
)

// WithLocale returns a context carrying the active locale. An empty locale
// leaves the context untouched.
func WithLocale(ctx context.Context, locale string) context.Context {
	key := Normalize(DomainLocale, locale)
	if key == "" {
		return ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, localeContextKey, key)
}

// WithChannel returns a context carrying the active sales channel override.
func WithChannel(ctx context.Context, channel string) context.Context {
	key := Normalize(DomainChannel, channel)
	if key == "" {
		return ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, channelContextKey, key)
}

// Locale extracts the active locale from the context.
func Locale(ctx context.Context) (Key, bool) {
	return fromContext(ctx, localeContextKey)
}

// Channel extracts the active channel override from the context.
func Channel(ctx context.Context) (Key, bool) {
	return fromContext(ctx, channelContextKey)
}

func fromContext(ctx context.Context, key contextKey) (Key, bool) {
	if ctx == nil {
		return "", false
	}
	value, ok := ctx.Value(key).(Key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}
