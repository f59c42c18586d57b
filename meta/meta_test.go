package meta_test

import (
	"context"
	"testing"

	"github.com/afigjabbarli-tech/BuyBuddy.Marketplace.Backend/meta"
	"github.com/code19m/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectAndExtract(t *testing.T) {
	tests := []struct {
		name string
		data map[meta.ContextKey]string
		want map[meta.ContextKey]string
	}{
		{
			name: "all known keys",
			data: map[meta.ContextKey]string{
				meta.TraceID:         "trace-1",
				meta.RequestUserID:   "0190f1f4-5e44-7000-8000-000000000001",
				meta.RequestUserRole: "admin",
				meta.ServiceName:     "marketplace",
				meta.ServiceVersion:  "v1.0.0",
				meta.AcceptLanguage:  "az",
			},
			want: map[meta.ContextKey]string{
				meta.TraceID:         "trace-1",
				meta.RequestUserID:   "0190f1f4-5e44-7000-8000-000000000001",
				meta.RequestUserRole: "admin",
				meta.ServiceName:     "marketplace",
				meta.ServiceVersion:  "v1.0.0",
				meta.AcceptLanguage:  "az",
			},
		},
		{
			name: "empty values are skipped",
			data: map[meta.ContextKey]string{meta.TraceID: "trace-2", meta.RequestUserID: ""},
			want: map[meta.ContextKey]string{meta.TraceID: "trace-2"},
		},
		{
			name: "unknown keys are not extracted",
			data: map[meta.ContextKey]string{"x-custom": "value"},
			want: map[meta.ContextKey]string{},
		},
		{
			name: "nil data",
			want: map[meta.ContextKey]string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := meta.InjectMetaToContext(context.Background(), tc.data)
			assert.Equal(t, tc.want, meta.ExtractMetaFromContext(ctx))
		})
	}
}

func TestExtract_IgnoresNonStringValues(t *testing.T) {
	ctx := context.WithValue(context.Background(), meta.TraceID, 42)
	ctx = context.WithValue(ctx, meta.ServiceName, "marketplace")

	assert.Equal(t, map[meta.ContextKey]string{meta.ServiceName: "marketplace"}, meta.ExtractMetaFromContext(ctx))
}

func TestFind(t *testing.T) {
	ctx := meta.InjectMetaToContext(context.Background(), map[meta.ContextKey]string{meta.RequestUserID: "user"}) //nolint:exhaustive // test

	assert.Equal(t, "user", meta.Find(ctx, meta.RequestUserID))
	assert.Empty(t, meta.Find(ctx, meta.TraceID))
}

func TestShouldGetMeta(t *testing.T) {
	type custom struct{ field string }

	tests := []struct {
		name        string
		ctx         context.Context
		want        string
		wantErr     string
		wantDetails errx.D
	}{
		{
			name: "present",
			ctx:  context.WithValue(context.Background(), meta.ServiceVersion, "v1.0.0"),
			want: "v1.0.0",
		},
		{
			name:        "missing",
			ctx:         context.Background(),
			wantErr:     "meta key not found",
			wantDetails: errx.D{"key": "service_version"},
		},
		{
			name:        "wrong type",
			ctx:         context.WithValue(context.Background(), meta.ServiceVersion, custom{field: "x"}),
			wantErr:     "meta value type mismatch",
			wantDetails: errx.D{"key": "service_version", "type": "meta_test.custom"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := meta.ShouldGetMeta(tc.ctx, meta.ServiceVersion)
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.Empty(t, got)

			details := errx.AsErrorX(err).Details()
			for k, v := range tc.wantDetails {
				assert.Equal(t, v, details[k], k)
			}
		})
	}
}

func TestSetServiceInfo(t *testing.T) {
	meta.SetServiceInfo("marketplace-seeder", "v2.3.4")
	meta.SetServiceInfo("ignored", "v0.0.0")

	assert.Equal(t, meta.ServiceInfo{Name: "marketplace-seeder", Version: "v2.3.4"}, meta.Service())
}
