// Package meta carries request metadata through context.
package meta

import (
	"context"
	"fmt"
	"sync"

	"github.com/code19m/errx"
)

// ContextKey is a type for keys used in context values for metadata.
type ContextKey string

const (
	// TraceID identifies the trace the current operation belongs to.
	TraceID ContextKey = "trace_id"

	// RequestUserID identifies the actor on whose behalf entities are changed.
	RequestUserID ContextKey = "request_user_id"

	// RequestUserRole is the role of the acting user.
	RequestUserRole ContextKey = "request_user_role"

	// ServiceName identifies the running service.
	ServiceName ContextKey = "service_name"

	// ServiceVersion is the version of the running service.
	ServiceVersion ContextKey = "service_version"

	// AcceptLanguage is the preferred locale of the caller.
	AcceptLanguage ContextKey = "accept-language"
)

//nolint:gochecknoglobals // fixed lookup order
var knownKeys = []ContextKey{
	TraceID,
	RequestUserID,
	RequestUserRole,
	ServiceName,
	ServiceVersion,
	AcceptLanguage,
}

// ServiceInfo describes the running process.
type ServiceInfo struct {
	Name    string
	Version string
}

//nolint:gochecknoglobals // set once at startup
var (
	service     ServiceInfo
	serviceOnce sync.Once
)

// SetServiceInfo records the service name and version. Only the first call has effect.
func SetServiceInfo(name, version string) {
	serviceOnce.Do(func() {
		service = ServiceInfo{Name: name, Version: version}
	})
}

// Service returns the info recorded by SetServiceInfo.
func Service() ServiceInfo {
	return service
}

// InjectMetaToContext returns ctx carrying every non-empty value of data.
func InjectMetaToContext(ctx context.Context, data map[ContextKey]string) context.Context {
	for k, v := range data {
		if v != "" {
			ctx = context.WithValue(ctx, k, v) //nolint:fatcontext // finite number of keys
		}
	}
	return ctx
}

// ExtractMetaFromContext collects the non-empty string values of all known keys.
func ExtractMetaFromContext(ctx context.Context) map[ContextKey]string {
	data := make(map[ContextKey]string, len(knownKeys))
	for _, k := range knownKeys {
		if v := Find(ctx, k); v != "" {
			data[k] = v
		}
	}
	return data
}

// Find returns the metadata value stored under key, or an empty string.
func Find(ctx context.Context, key ContextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// ShouldGetMeta returns the metadata value stored under key.
// It fails when the key is absent or holds a non-string value.
func ShouldGetMeta(ctx context.Context, key ContextKey) (string, error) {
	raw := ctx.Value(key)
	if raw == nil {
		return "", errx.New("meta key not found", errx.WithDetails(errx.D{"key": string(key)}))
	}
	v, ok := raw.(string)
	if !ok {
		return "", errx.New("meta value type mismatch", errx.WithDetails(errx.D{
			"key":  string(key),
			"type": fmt.Sprintf("%T", raw),
		}))
	}
	return v, nil
}
