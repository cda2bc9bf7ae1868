package cloudstack_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/lestrrat-go/cloudstack"
	"github.com/lestrrat-go/cloudstack/query"
	"github.com/stretchr/testify/require"
)

// fakeConnection records every request it is asked to send
type fakeConnection struct {
	mu       sync.Mutex
	requests []*cloudstack.Request
	paths    []string
	raw      *cloudstack.RawResponse
	err      error
}

func (c *fakeConnection) Get(_ context.Context, req *cloudstack.Request, path string) (*cloudstack.RawResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	c.paths = append(c.paths, path)
	if c.err != nil {
		return nil, c.err
	}
	return c.raw, nil
}

func (c *fakeConnection) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func newFakeConnection(contentType string) *fakeConnection {
	return &fakeConnection{
		raw: &cloudstack.RawResponse{
			StatusCode: http.StatusOK,
			Header:     http.Header{"content-type": []string{contentType}},
			Body:       []byte(`{"listvirtualmachinesresponse":{}}`),
		},
	}
}

func testConfig() cloudstack.Config {
	return cloudstack.Config{
		URL:       "http://cloud-stack.com/client/api",
		APIKey:    "cloud-stack-api-key",
		SecretKey: "cloud-stack-secret-key",
	}
}

func TestAdapter(t *testing.T) {
	t.Parallel()

	conn := newFakeConnection("text/javascript; charset=UTF-8")
	adapter := cloudstack.NewAdapter(conn, testConfig())

	env := cloudstack.NewEnvironment("listVirtualMachines", query.Params{"z": "z", "a": "a"})
	res, err := adapter.Call(context.Background(), env)
	require.NoError(t, err)

	t.Run("makes a call via the connection", func(t *testing.T) {
		require.Equal(t, 1, conn.calls())
		require.Equal(t, "", conn.paths[0])
	})
	t.Run("sorts the parameters", func(t *testing.T) {
		require.Equal(t, []query.Pair{{Key: "a", Value: "a"}, {Key: "z", Value: "z"}}, conn.requests[0].Pairs())
		require.Equal(t, "listVirtualMachines", conn.requests[0].Endpoint())
		require.Equal(t, "cloud-stack-api-key", conn.requests[0].APIKey())
	})
	t.Run("sets the environment's raw response", func(t *testing.T) {
		require.Same(t, conn.raw, env.RawResponse)
	})
	t.Run("sets the response content type", func(t *testing.T) {
		require.Same(t, res, env.Response)
		require.Equal(t, "text/javascript", env.Response.ContentType())
		require.Equal(t, "UTF-8", env.Response.Charset())
	})
	t.Run("does not resolve endpoint names", func(t *testing.T) {
		name, ok := adapter.EndpointNameFor("listVirtualMachines")
		require.False(t, ok)
		require.Empty(t, name)
	})
}

func TestAdapterSignatureTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	cfg := testConfig()
	cfg.SignatureTTL = 10 * time.Minute

	conn := newFakeConnection("application/json")
	adapter := cloudstack.NewAdapter(conn, cfg, cloudstack.WithClock(cloudstack.FixedClock(now)))

	_, err := adapter.Call(context.Background(), cloudstack.NewEnvironment("listZones", nil))
	require.NoError(t, err)

	expires, ok := conn.requests[0].Expires()
	require.True(t, ok)
	require.Equal(t, now.Add(10*time.Minute), expires)
}

func TestAdapterEmptySecretKey(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.SecretKey = ""
	conn := newFakeConnection("application/json")

	env := cloudstack.NewEnvironment("listVirtualMachines", query.Params{"list": "all"})
	res, err := cloudstack.NewAdapter(conn, cfg).Call(context.Background(), env)
	require.Nil(t, res)
	require.ErrorIs(t, err, cloudstack.ErrConfiguration)
	require.Equal(t, 0, conn.calls(), "connection must never be invoked")
	require.Nil(t, env.RawResponse)
	require.Nil(t, env.Response)
}

func TestAdapterTransportError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection refused")
	conn := &fakeConnection{err: boom}

	env := cloudstack.NewEnvironment("listZones", nil)
	res, err := cloudstack.NewAdapter(conn, testConfig()).Call(context.Background(), env)
	require.Nil(t, res)
	require.ErrorIs(t, err, cloudstack.ErrTransport)
	require.ErrorIs(t, err, boom)
	require.Nil(t, env.Response)

	var cerr *cloudstack.Error
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, cloudstack.PhaseTransport, cerr.Phase)
}

// recorder is a stage that records when its pre and post logic run
type recorder struct {
	cloudstack.Base
	name string
	log  *[]string
}

func (r recorder) Call(ctx context.Context, env *cloudstack.Environment) (*cloudstack.Response, error) {
	*r.log = append(*r.log, r.name+":before")
	res, err := r.Next.Call(ctx, env)
	*r.log = append(*r.log, r.name+":after")
	return res, err
}

func recording(name string, log *[]string) cloudstack.Middleware {
	return func(next cloudstack.Handler) cloudstack.Handler {
		return recorder{Base: cloudstack.Base{Next: next}, name: name, log: log}
	}
}

// terminal is a Handler that stands in for the adapter
type terminal struct {
	log *[]string
}

func (t terminal) Call(context.Context, *cloudstack.Environment) (*cloudstack.Response, error) {
	*t.log = append(*t.log, "adapter")
	return cloudstack.NewResponse(&cloudstack.RawResponse{StatusCode: http.StatusOK}), nil
}

func (terminal) EndpointNameFor(string) (string, bool) { return "", false }

func TestChainOrder(t *testing.T) {
	t.Parallel()

	var log []string
	chain := cloudstack.Chain(terminal{log: &log}, recording("A", &log), recording("B", &log))

	_, err := chain.Call(context.Background(), cloudstack.NewEnvironment("listZones", nil))
	require.NoError(t, err)
	require.Equal(t, []string{"A:before", "B:before", "adapter", "B:after", "A:after"}, log)
}

func TestChainWithoutMiddlewares(t *testing.T) {
	t.Parallel()

	var log []string
	term := terminal{log: &log}
	require.Equal(t, cloudstack.Handler(term), cloudstack.Chain(term))

	chain := cloudstack.Chain(term, nil)
	_, err := chain.Call(context.Background(), cloudstack.NewEnvironment("listZones", nil))
	require.NoError(t, err)
	require.Equal(t, []string{"adapter"}, log)
}

func TestChainEndpointNameForDefault(t *testing.T) {
	t.Parallel()

	var log []string
	chain := cloudstack.Chain(
		cloudstack.NewAdapter(newFakeConnection("application/json"), testConfig()),
		recording("A", &log),
		recording("B", &log),
	)
	for _, name := range []string{"listVirtualMachines", "list_virtual_machines", "anything"} {
		resolved, ok := chain.EndpointNameFor(name)
		require.False(t, ok)
		require.Empty(t, resolved)
	}
}

func TestChainShortCircuit(t *testing.T) {
	t.Parallel()

	var log []string
	cached := cloudstack.NewResponse(&cloudstack.RawResponse{StatusCode: http.StatusOK})
	short := cloudstack.Func(func(cloudstack.Handler) cloudstack.HandlerFunc {
		return func(context.Context, *cloudstack.Environment) (*cloudstack.Response, error) {
			return cached, nil
		}
	})

	chain := cloudstack.Chain(terminal{log: &log}, recording("A", &log), short, recording("B", &log))
	res, err := chain.Call(context.Background(), cloudstack.NewEnvironment("listZones", nil))
	require.NoError(t, err)
	require.Same(t, cached, res)
	require.Equal(t, []string{"A:before", "A:after"}, log)
}

func TestChainErrorSkipsInnerStages(t *testing.T) {
	t.Parallel()

	var log []string
	boom := errors.New("boom")
	failing := cloudstack.Func(func(cloudstack.Handler) cloudstack.HandlerFunc {
		return func(context.Context, *cloudstack.Environment) (*cloudstack.Response, error) {
			return nil, boom
		}
	})

	chain := cloudstack.Chain(terminal{log: &log}, failing, recording("B", &log))
	res, err := chain.Call(context.Background(), cloudstack.NewEnvironment("listZones", nil))
	require.Nil(t, res)
	require.ErrorIs(t, err, boom)
	require.Empty(t, log)
}
