package transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfe-lab/ferrier/internal/transport"
	"github.com/cfe-lab/ferrier/pkg/ferrier"
)

// recordingLogger captures log lines for assertions.
type recordingLogger struct {
	mu   sync.Mutex
	logs []string
}

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, msg)
}

func (l *recordingLogger) lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.logs...)
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.record(msg) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.record(msg) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.record(msg) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.record(msg) }

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClientSuccess(t *testing.T) {
	t.Parallel()
	t.Run("JSON body resolves to equal value", func(t *testing.T) {
		t.Parallel()

		payload := map[string]any{"id": float64(1), "name": "x"}

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/items", request.URL.Path)
			assert.Equal(t, "application/json;charset=utf-8", request.Header.Get("Accept"))
			_ = json.NewEncoder(writer).Encode(payload)
		}))
		defer server.Close()

		client := transport.NewClient(server.URL)

		resp, err := client.Get(context.Background(), "/items", nil).Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, payload, resp.Value)
		assert.Empty(t, resp.RedirectTo)
	})

	t.Run("location header surfaces as redirect target", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.Header().Set("Location", "/items/9")
			writer.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(writer).Encode(map[string]any{"id": 9})
		}))
		defer server.Close()

		client := transport.NewClient(server.URL)

		resp, err := client.Post(context.Background(), "/items", map[string]any{"name": "x"}).Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
		assert.Equal(t, "/items/9", resp.RedirectTo)
	})

	t.Run("unparseable 2xx body degrades to raw text", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			_, _ = writer.Write([]byte("<html>not json</html>"))
		}))
		defer server.Close()

		client := transport.NewClient(server.URL)

		resp, err := client.Get(context.Background(), "/items", nil).Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "<html>not json</html>", resp.Value)
	})

	t.Run("query parameters serialized with nils skipped", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "a=1", request.URL.RawQuery)
			assert.Empty(t, request.Header.Get("Content-Type"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := transport.NewClient(server.URL)

		_, err := client.Get(context.Background(), "/items", map[string]any{"a": 1, "b": nil}).Wait(context.Background())
		require.NoError(t, err)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClientFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		statusCode  int
		body        string
		wantMessage string
	}{
		{"error field", 404, `{"error":"bad id"}`, "bad id"},
		{"empty error field", 400, `{"error":""}`, "(no message provided)"},
		{"non-JSON body", 500, "oops", "oops"},
		{"empty body", 500, "", "Server returned with an unexpected response"},
		{"object without error", 422, `{"detail":"no"}`, `{"detail":"no"}`},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				writer.WriteHeader(testCase.statusCode)
				_, _ = writer.Write([]byte(testCase.body))
			}))
			defer server.Close()

			client := transport.NewClient(server.URL)

			_, err := client.Get(context.Background(), "/items", nil).Wait(context.Background())
			require.Error(t, err)
			assert.Equal(t, testCase.wantMessage, ferrier.MessageFromError(err))

			reqErr := &ferrier.RequestError{}
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, testCase.statusCode, reqErr.StatusCode)
		})
	}

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		// A closed server gives a connection error, the status-0 path.
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close()

		client := transport.NewClient(server.URL)

		_, err := client.Get(context.Background(), "/items", nil).Wait(context.Background())
		require.Error(t, err)
		assert.True(t, ferrier.IsUnreachable(err))
		assert.Equal(t, "Could not reach the server", ferrier.MessageFromError(err))
	})

	t.Run("timeout takes the unreachable path", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client := transport.NewClient(server.URL, transport.WithTimeout(20*time.Millisecond))

		_, err := client.Get(context.Background(), "/items", nil).Wait(context.Background())
		require.Error(t, err)
		assert.True(t, ferrier.IsUnreachable(err))
	})
}

func TestClientMethods(t *testing.T) {
	t.Parallel()

	type call func(*transport.Client, context.Context) *ferrier.Future[*ferrier.Response]

	body := map[string]any{"name": "x"}

	tests := []struct {
		name     string
		method   string
		wantBody bool
		fn       call
	}{
		{"GET", "GET", false, func(c *transport.Client, ctx context.Context) *ferrier.Future[*ferrier.Response] {
			return c.Get(ctx, "/t", nil)
		}},
		{"POST", "POST", true, func(c *transport.Client, ctx context.Context) *ferrier.Future[*ferrier.Response] {
			return c.Post(ctx, "/t", body)
		}},
		{"PATCH", "PATCH", true, func(c *transport.Client, ctx context.Context) *ferrier.Future[*ferrier.Response] {
			return c.Patch(ctx, "/t", body)
		}},
		{"PUT", "PUT", true, func(c *transport.Client, ctx context.Context) *ferrier.Future[*ferrier.Response] {
			return c.Put(ctx, "/t", body)
		}},
		{"DELETE", "DELETE", false, func(c *transport.Client, ctx context.Context) *ferrier.Future[*ferrier.Response] {
			return c.Delete(ctx, "/t", nil)
		}},
		{"LINK", "LINK", true, func(c *transport.Client, ctx context.Context) *ferrier.Future[*ferrier.Response] {
			return c.Link(ctx, "/t", body)
		}},
		{"UNLINK", "UNLINK", true, func(c *transport.Client, ctx context.Context) *ferrier.Future[*ferrier.Response] {
			return c.Unlink(ctx, "/t", body)
		}},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/t", request.URL.Path)

				if testCase.wantBody {
					assert.Equal(t, "application/json;charset=utf-8", request.Header.Get("Content-Type"))

					var got map[string]any

					require.NoError(t, json.NewDecoder(request.Body).Decode(&got))
					assert.Equal(t, body, got)
				}

				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := transport.NewClient(server.URL)

			resp, err := testCase.fn(client, context.Background()).Wait(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

func TestClientCancel(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		close(started)
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := transport.NewClient(server.URL)

	future := client.Get(context.Background(), "/slow", nil)

	// Cancel through a derived future; same abort handle.
	chained := ferrier.Then(future, func(r *ferrier.Response) (*ferrier.Response, error) {
		return r, nil
	})

	<-started
	chained.Cancel()

	_, err := future.Wait(context.Background())
	require.Error(t, err)
	assert.True(t, ferrier.IsCancelled(err))
	assert.True(t, future.Cancelled())
}

func TestClientCancelAfterEncodeFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		t.Error("no request should go out for an unencodable body")
	}))
	defer server.Close()

	client := transport.NewClient(server.URL)

	// Channels cannot be JSON-encoded; the future settles immediately.
	future := client.Post(context.Background(), "/items", make(chan int))

	_, err := future.Wait(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoding request body")

	// Cancel on a settled future stays a safe no-op.
	assert.NotPanics(t, func() { future.Cancel() })
}

func TestClientDebugLogging(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logger := &recordingLogger{}
	client := transport.NewClient(server.URL, transport.WithLogger(logger), transport.WithDebug(true))

	_, err := client.Get(context.Background(), "/items", nil).Wait(context.Background())
	require.NoError(t, err)

	lines := logger.lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "ferrier: GET "+server.URL+"/items", lines[0])

	// The toggle mutates at runtime.
	client.SetDebug(false)

	_, err = client.Get(context.Background(), "/items", nil).Wait(context.Background())
	require.NoError(t, err)
	assert.Len(t, logger.lines(), 1)
}

func TestClientFormBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.True(t, strings.HasPrefix(request.Header.Get("Content-Type"), "application/x-www-form-urlencoded"))
		require.NoError(t, request.ParseForm())
		assert.Equal(t, "x", request.PostForm.Get("name"))
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := transport.NewClient(server.URL)

	req := &transport.Request{
		Method:      http.MethodPost,
		URL:         "/form",
		Body:        url.Values{"name": []string{"x"}},
		ContentType: "application/x-www-form-urlencoded;charset=utf-8",
	}

	_, err := client.Do(context.Background(), req).Wait(context.Background())
	require.NoError(t, err)
}

func TestClientRetryConfig(t *testing.T) {
	t.Parallel()

	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		attempts++
		if attempts < 3 {
			writer.WriteHeader(http.StatusInternalServerError)
		} else {
			writer.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	client := transport.NewClient(server.URL, transport.WithRetryConfig(3, 10*time.Millisecond, 50*time.Millisecond))

	resp, err := client.Get(context.Background(), "/t", nil).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 3, attempts)
}

func TestClientNoRetryByDefault(t *testing.T) {
	t.Parallel()

	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		attempts++

		writer.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := transport.NewClient(server.URL)

	_, err := client.Get(context.Background(), "/t", nil).Wait(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}
