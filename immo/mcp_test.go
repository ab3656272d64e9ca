package immo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testMCPImpl = &mcp.Implementation{Name: "immotrack-test", Version: "0.1.0"}

func mcpSession(t *testing.T, svc *Service) *mcp.ClientSession {
	t.Helper()
	srv := mcp.NewServer(testMCPImpl, nil)
	svc.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func mcpCallTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if result.IsError {
		t.Fatalf("CallTool(%s) tool error: %v", name, result.Content)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	return tc.Text
}

func TestMCP_RecordGetDefault(t *testing.T) {
	svc := New(&Config{GeminiAPIKey: "k"}, nil)
	session := mcpSession(t, svc)

	text := mcpCallTool(t, session, "immo_record_get", map[string]any{})
	var s Session
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.ID != DefaultSessionID {
		t.Errorf("session ID = %q, want default", s.ID)
	}
	if s.Record.Status != "A contacter" {
		t.Errorf("status = %q", s.Record.Status)
	}
}

func TestMCP_RecordUpdate(t *testing.T) {
	svc := New(&Config{GeminiAPIKey: "k"}, nil)
	session := mcpSession(t, svc)

	text := mcpCallTool(t, session, "immo_record_update", map[string]any{
		"fields": map[string]any{"ville": "Lyon", "prix": 250000},
	})
	var s Session
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Record.Ville != "Lyon" || s.Record.Prix != 250000 {
		t.Errorf("record = %+v", s.Record)
	}
}

func TestMCP_RecordUpdateInvalid(t *testing.T) {
	svc := New(&Config{GeminiAPIKey: "k"}, nil)
	session := mcpSession(t, svc)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "immo_record_update",
		Arguments: map[string]any{"fields": map[string]any{"status": "Jamais"}},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !result.IsError {
		t.Fatal("invalid enum: expected tool error")
	}
}

func TestMCP_Analyze(t *testing.T) {
	model := modelServer(t, `{"ville": "Rennes"}`)
	defer model.Close()
	svc := newTestService(t, model.URL, "")
	session := mcpSession(t, svc)

	text := mcpCallTool(t, session, "immo_analyze", map[string]any{"text": "T1 à Rennes"})
	var s Session
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Record.Ville != "Rennes" {
		t.Errorf("ville = %q", s.Record.Ville)
	}
}

func TestMCP_Submit(t *testing.T) {
	wr := &webhookRecorder{status: http.StatusOK}
	hook := httptest.NewServer(wr.handler())
	defer hook.Close()
	svc := newTestService(t, "", hook.URL)
	session := mcpSession(t, svc)

	mcpCallTool(t, session, "immo_record_update", map[string]any{
		"fields": map[string]any{"ville": "Lyon"},
	})
	text := mcpCallTool(t, session, "immo_submit", map[string]any{})
	if wr.calls != 1 {
		t.Fatalf("webhook calls = %d", wr.calls)
	}
	if !strings.Contains(text, `"ville":"Lyon"`) {
		t.Errorf("record did not persist in response: %s", text)
	}
}

func TestMCP_ToolsListed(t *testing.T) {
	svc := New(&Config{GeminiAPIKey: "k"}, nil)
	session := mcpSession(t, svc)

	tools, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	want := map[string]bool{
		"immo_analyze": true, "immo_record_get": true, "immo_record_update": true,
		"immo_draft": true, "immo_submit": true,
	}
	for _, tool := range tools.Tools {
		delete(want, tool.Name)
	}
	for name := range want {
		t.Errorf("tool %s not registered", name)
	}
}
