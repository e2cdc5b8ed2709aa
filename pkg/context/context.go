// Package context carries the request-scoped values the middleware resolves:
// request id, route, client address and the signed-in user.
package context

import "context"

type ContextKey string

const (
	RequestIDKey = ContextKey("X-Request-Id")
	MethodKey    = ContextKey("X-Method")
	RouteKey     = ContextKey("X-Route")
	ClientIPKey  = ContextKey("X-Client-Ip")
	UserIDKey    = ContextKey("X-User-Id")
	UsernameKey  = ContextKey("X-Username")
)

func get[T any](ctx context.Context, key ContextKey) T {
	v, _ := ctx.Value(key).(T)
	return v
}

func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func GetRequestID(ctx context.Context) string { return get[string](ctx, RequestIDKey) }

func SetMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, MethodKey, method)
}

func GetMethod(ctx context.Context) string { return get[string](ctx, MethodKey) }

func SetRoute(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, RouteKey, route)
}

func GetRoute(ctx context.Context) string { return get[string](ctx, RouteKey) }

func SetClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ClientIPKey, ip)
}

func GetClientIP(ctx context.Context) string { return get[string](ctx, ClientIPKey) }

// SetUserID marks the request as authenticated. Zero means anonymous.
func SetUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}

func GetUserID(ctx context.Context) int64 { return get[int64](ctx, UserIDKey) }

func SetUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, UsernameKey, username)
}

func GetUsername(ctx context.Context) string { return get[string](ctx, UsernameKey) }

// Fields returns the non-empty request values as structured log fields.
func Fields(ctx context.Context) map[string]any {
	fields := map[string]any{}
	for name, v := range map[string]string{
		"request_id": GetRequestID(ctx),
		"method":     GetMethod(ctx),
		"route":      GetRoute(ctx),
		"remote_ip":  GetClientIP(ctx),
		"username":   GetUsername(ctx),
	} {
		if v != "" {
			fields[name] = v
		}
	}
	if id := GetUserID(ctx); id != 0 {
		fields["user_id"] = id
	}
	return fields
}
