package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	scramblemcp "github.com/aretw0/scramble/pkg/adapters/mcp"
	"github.com/aretw0/scramble/pkg/domain"
)

type MockScrambler struct {
	mock.Mock
}

func (m *MockScrambler) SetText(ctx context.Context, text string) (*domain.Completion, error) {
	args := m.Called(ctx, text)
	c, _ := args.Get(0).(*domain.Completion)
	return c, args.Error(1)
}

func (m *MockScrambler) NextName(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockScrambler) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Snapshot), args.Error(1)
}

// call sends one JSON-RPC request through the server and returns the decoded response.
func call(t *testing.T, s *scramblemcp.Server, method string, params any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	resp := s.MCPServer().HandleMessage(context.Background(), raw)
	out, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	return decoded
}

func toolCall(t *testing.T, s *scramblemcp.Server, name string, args map[string]any) map[string]any {
	t.Helper()
	resp := call(t, s, "tools/call", map[string]any{"name": name, "arguments": args})
	require.Contains(t, resp, "result", fmt.Sprint(resp))
	return resp["result"].(map[string]any)
}

func TestServer_ListsTools(t *testing.T) {
	s := scramblemcp.NewServer(new(MockScrambler))

	resp := call(t, s, "tools/list", map[string]any{})
	tools := resp["result"].(map[string]any)["tools"].([]any)

	var names []string
	for _, tool := range tools {
		names = append(names, tool.(map[string]any)["name"].(string))
	}
	assert.ElementsMatch(t, []string{"set_text", "next_name", "current_text"}, names)
}

func TestServer_SetText(t *testing.T) {
	m := new(MockScrambler)
	m.On("SetText", mock.Anything, "Hello").Return(domain.NewCompletion(), nil)
	s := scramblemcp.NewServer(m)

	result := toolCall(t, s, "set_text", map[string]any{"text": "Hello"})

	assert.NotEqual(t, true, result["isError"])
	structured := result["structuredContent"].(map[string]any)
	assert.Equal(t, "Hello", structured["text"])
	assert.Equal(t, false, structured["settled"])
	m.AssertExpectations(t)
}

func TestServer_SetTextWait(t *testing.T) {
	settled := domain.NewCompletion()
	settled.Settle()
	superseded := domain.NewCompletion()
	superseded.Abandon()

	m := new(MockScrambler)
	m.On("SetText", mock.Anything, "A").Return(settled, nil)
	m.On("SetText", mock.Anything, "B").Return(superseded, nil)
	s := scramblemcp.NewServer(m)

	a := toolCall(t, s, "set_text", map[string]any{"text": "A", "wait": true})
	assert.Equal(t, true, a["structuredContent"].(map[string]any)["settled"])

	b := toolCall(t, s, "set_text", map[string]any{"text": "B", "wait": true})
	assert.Equal(t, true, b["structuredContent"].(map[string]any)["superseded"])
}

func TestServer_SetTextError(t *testing.T) {
	m := new(MockScrambler)
	m.On("SetText", mock.Anything, "x").Return(nil, domain.ErrNotRunning)
	s := scramblemcp.NewServer(m)

	result := toolCall(t, s, "set_text", map[string]any{"text": "x"})
	assert.Equal(t, true, result["isError"])

	rejected := toolCall(t, s, "set_text", map[string]any{"text": strings.Repeat("a", domain.DefaultMaxTextSize+1)})
	assert.Equal(t, true, rejected["isError"])
}

func TestServer_SetTextSanitizes(t *testing.T) {
	m := new(MockScrambler)
	m.On("SetText", mock.Anything, "Ada Grace").Return(domain.NewCompletion(), nil)
	s := scramblemcp.NewServer(m)

	result := toolCall(t, s, "set_text", map[string]any{"text": "Ada\nGrace\x1b"})
	assert.Equal(t, "Ada Grace", result["structuredContent"].(map[string]any)["text"])
	m.AssertExpectations(t)
}

func TestServer_NextName(t *testing.T) {
	m := new(MockScrambler)
	m.On("NextName", mock.Anything).Return(1, nil)
	m.On("Snapshot", mock.Anything).Return(domain.Snapshot{Names: []string{"Ada", "Grace"}}, nil)
	s := scramblemcp.NewServer(m)

	result := toolCall(t, s, "next_name", map[string]any{})
	structured := result["structuredContent"].(map[string]any)
	assert.Equal(t, float64(1), structured["index"])
	assert.Equal(t, "Grace", structured["name"])
}

func TestServer_CurrentText(t *testing.T) {
	m := new(MockScrambler)
	m.On("Snapshot", mock.Anything).Return(domain.Snapshot{Text: "Ada"}, nil).Once()
	m.On("Snapshot", mock.Anything).Return(domain.Snapshot{}, errors.New("boom")).Once()
	s := scramblemcp.NewServer(m)

	ok := toolCall(t, s, "current_text", map[string]any{})
	content := ok["content"].([]any)[0].(map[string]any)
	assert.Contains(t, content["text"], `"text":"Ada"`)

	failed := toolCall(t, s, "current_text", map[string]any{})
	assert.Equal(t, true, failed["isError"])
}

func TestServer_StateResource(t *testing.T) {
	m := new(MockScrambler)
	m.On("Snapshot", mock.Anything).Return(domain.Snapshot{Text: "Grace", Index: 1}, nil)
	s := scramblemcp.NewServer(m)

	resp := call(t, s, "resources/read", map[string]any{"uri": scramblemcp.StateURI})
	contents := resp["result"].(map[string]any)["contents"].([]any)
	require.Len(t, contents, 1)

	entry := contents[0].(map[string]any)
	assert.Equal(t, scramblemcp.StateURI, entry["uri"])
	assert.Contains(t, entry["text"], `"index":1`)
}
