package secrets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestResolveCachesRemoteSecret(t *testing.T) {
	ctx := context.Background()

	client := newFakeSecretClient()
	resource := "projects/test/secrets/seo_admin_token/versions/latest"
	client.values[resource] = "remote-secret"

	fetcher := NewFetcher(
		WithSecretManagerClient(client),
		WithDefaultProject("test"),
		WithLogger(zap.NewNop()),
		WithMeter(noop.NewMeterProvider().Meter("test")),
	)
	defer fetcher.Close()

	for i := 0; i < 2; i++ {
		got, err := fetcher.Resolve(ctx, "secret://seo_admin_token")
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if got != "remote-secret" {
			t.Fatalf("expected remote-secret, got %s", got)
		}
	}

	if calls := client.callCount(resource); calls != 1 {
		t.Fatalf("expected remote fetch once, got %d", calls)
	}
}

func TestResolveHonoursProjectAndVersion(t *testing.T) {
	ctx := context.Background()

	client := newFakeSecretClient()
	client.values["projects/other/secrets/redis_password/versions/4"] = "pinned"

	fetcher := NewFetcher(WithSecretManagerClient(client), WithDefaultProject("test"))

	got, err := fetcher.Resolve(ctx, "sm://redis_password?project=other&version=4")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != "pinned" {
		t.Fatalf("expected pinned, got %s", got)
	}
}

func TestResolveFallsBackWhenSecretManagerUnavailable(t *testing.T) {
	ctx := context.Background()

	fallbackPath := writeFallback(t, "# local\nsm://seo_admin_token=local-secret\n")

	client := newFakeSecretClient()
	client.errors["projects/test/secrets/seo_admin_token/versions/latest"] = status.Error(codes.PermissionDenied, "denied")

	fetcher := NewFetcher(
		WithSecretManagerClient(client),
		WithDefaultProject("test"),
		WithFallbackFile(fallbackPath),
	)

	value, err := fetcher.Resolve(ctx, "secret://seo_admin_token")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if value != "local-secret" {
		t.Fatalf("expected fallback secret, got %s", value)
	}
}

func TestResolveDoesNotFallbackOnNotFound(t *testing.T) {
	ctx := context.Background()

	fallbackPath := writeFallback(t, "secret://seo_admin_token=local-secret\n")

	fetcher := NewFetcher(
		WithSecretManagerClient(newFakeSecretClient()),
		WithDefaultProject("test"),
		WithFallbackFile(fallbackPath),
	)

	if _, err := fetcher.Resolve(ctx, "secret://seo_admin_token"); err == nil {
		t.Fatal("expected not found error")
	} else if status.Code(errors.Unwrap(err)) != codes.NotFound {
		t.Fatalf("expected wrapped NotFound, got %v", err)
	}
}

func TestResolveWithoutProjectUsesFallbackOnly(t *testing.T) {
	ctx := context.Background()

	originalFactory := secretManagerClientFactory
	secretManagerClientFactory = func(context.Context, ...option.ClientOption) (secretManagerClient, error) {
		t.Fatal("client must not be created without a project")
		return nil, nil
	}
	t.Cleanup(func() {
		secretManagerClientFactory = originalFactory
	})

	fallbackPath := writeFallback(t, "secret://redis_password=local-redis\n")
	fetcher := NewFetcher(WithFallbackFile(fallbackPath))

	for _, ref := range []string{"secret://redis_password", "sm://redis_password?version=2"} {
		value, err := fetcher.Resolve(ctx, ref)
		if err != nil {
			t.Fatalf("Resolve(%s) returned error: %v", ref, err)
		}
		if value != "local-redis" {
			t.Fatalf("Resolve(%s) = %s, want local-redis", ref, value)
		}
	}

	if _, err := fetcher.Resolve(ctx, "secret://unknown"); err == nil {
		t.Fatal("expected error for missing fallback value")
	}
}

func TestClientFactoryFailureUsesFallback(t *testing.T) {
	ctx := context.Background()

	originalFactory := secretManagerClientFactory
	calls := 0
	secretManagerClientFactory = func(context.Context, ...option.ClientOption) (secretManagerClient, error) {
		calls++
		return nil, errors.New("no credentials")
	}
	t.Cleanup(func() {
		secretManagerClientFactory = originalFactory
	})

	fallbackPath := writeFallback(t, "secret://seo_admin_token=local-secret\nsecret://redis_password=local-redis\n")
	fetcher := NewFetcher(WithDefaultProject("test"), WithFallbackFile(fallbackPath))
	defer fetcher.Close()

	for ref, want := range map[string]string{
		"secret://seo_admin_token": "local-secret",
		"secret://redis_password":  "local-redis",
	} {
		value, err := fetcher.Resolve(ctx, ref)
		if err != nil {
			t.Fatalf("Resolve(%s) returned error: %v", ref, err)
		}
		if value != want {
			t.Fatalf("Resolve(%s) = %s, want %s", ref, value, want)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one client construction attempt, got %d", calls)
	}
}

func TestParseReferenceRejectsInvalidInput(t *testing.T) {
	for _, ref := range []string{"", "   ", "https://example.com/token", "secret://"} {
		if _, err := parseReference(ref); err == nil {
			t.Errorf("expected error for %q", ref)
		}
	}
}

func writeFallback(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".secrets.local")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed writing fallback file: %v", err)
	}
	return path
}

type fakeSecretClient struct {
	mu      sync.Mutex
	values  map[string]string
	errors  map[string]error
	counter map[string]int
}

func newFakeSecretClient() *fakeSecretClient {
	return &fakeSecretClient{
		values:  make(map[string]string),
		errors:  make(map[string]error),
		counter: make(map[string]int),
	}
}

func (f *fakeSecretClient) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := req.GetName()
	f.counter[name]++

	if err, ok := f.errors[name]; ok && err != nil {
		return nil, err
	}
	if value, ok := f.values[name]; ok {
		return &secretmanagerpb.AccessSecretVersionResponse{
			Payload: &secretmanagerpb.SecretPayload{Data: []byte(value)},
		}, nil
	}
	return nil, status.Error(codes.NotFound, "not found")
}

func (f *fakeSecretClient) Close() error {
	return nil
}

func (f *fakeSecretClient) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counter[name]
}
