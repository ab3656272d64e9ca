// CLAUDE:SUMMARY MCP surface: immo_* tools mirroring the HTTP API for agent-driven review.
package immo

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/immotrack/kit"
)

// RegisterMCP registers all immo tools on an MCP server. Tools operate on
// the default session unless a session_id argument says otherwise, so a
// single-user agent needs no session handshake.
func (svc *Service) RegisterMCP(srv *mcp.Server) {
	svc.registerAnalyze(srv)
	svc.registerRecordGet(srv)
	svc.registerRecordUpdate(srv)
	svc.registerDraft(srv)
	svc.registerSubmit(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func sessionOr(id string) string {
	if id == "" {
		return DefaultSessionID
	}
	return id
}

// logged surfaces tool failures in the service log with their transport;
// MCP clients only see the tool-result error.
func (svc *Service) logged(tool string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			resp, err := next(ctx, req)
			if err != nil {
				svc.logger.Warn("tool failed", "tool", tool,
					"transport", kit.GetTransport(ctx),
					"session_id", kit.GetSessionID(ctx), "error", err)
			}
			return resp, err
		}
	}
}

func (svc *Service) register(srv *mcp.Server, tool *mcp.Tool, endpoint kit.Endpoint, decode func(*mcp.CallToolRequest) (*kit.MCPDecodeResult, error)) {
	kit.RegisterMCPTool(srv, tool, kit.Chain(svc.logged(tool.Name))(endpoint), decode)
}

func (svc *Service) registerAnalyze(srv *mcp.Server) {
	type req struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
		URL       string `json:"url"`
		APIKey    string `json:"api_key"`
	}

	tool := &mcp.Tool{
		Name:        "immo_analyze",
		Description: "Analyse a real-estate listing (pasted text and/or URL) and fill the working record",
		InputSchema: inputSchema(map[string]any{
			"session_id": map[string]any{"type": "string", "description": "Session ID (default session if omitted)"},
			"text":       map[string]any{"type": "string", "description": "Raw listing text"},
			"url":        map[string]any{"type": "string", "description": "Listing URL"},
			"api_key":    map[string]any{"type": "string", "description": "Gemini API key override (configured key if omitted)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.Analyze(ctx, sessionOr(p.SessionID), AnalyzeInput{RawText: p.Text, URL: p.URL, APIKey: p.APIKey})
	}

	svc.register(srv, tool, endpoint, decodeInto[req])
}

func (svc *Service) registerRecordGet(srv *mcp.Server) {
	type req struct {
		SessionID string `json:"session_id"`
	}

	tool := &mcp.Tool{
		Name:        "immo_record_get",
		Description: "Get the current working record of a review session",
		InputSchema: inputSchema(map[string]any{
			"session_id": map[string]any{"type": "string", "description": "Session ID (default session if omitted)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.GetSession(sessionOr(p.SessionID))
	}

	svc.register(srv, tool, endpoint, decodeInto[req])
}

func (svc *Service) registerRecordUpdate(srv *mcp.Server) {
	type req struct {
		SessionID string         `json:"session_id"`
		Fields    map[string]any `json:"fields"`
	}

	tool := &mcp.Tool{
		Name:        "immo_record_update",
		Description: "Update fields of the working record (ville, prix, status, commentaire, ...)",
		InputSchema: inputSchema(map[string]any{
			"session_id": map[string]any{"type": "string", "description": "Session ID (default session if omitted)"},
			"fields":     map[string]any{"type": "object", "description": "Wire-key fields to set"},
		}, []string{"fields"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.UpdateRecord(sessionOr(p.SessionID), p.Fields)
	}

	svc.register(srv, tool, endpoint, decodeInto[req])
}

func (svc *Service) registerDraft(srv *mcp.Server) {
	type req struct {
		SessionID string `json:"session_id"`
		APIKey    string `json:"api_key"`
	}

	tool := &mcp.Tool{
		Name:        "immo_draft",
		Description: "Generate the seller contact message for the record's neighbourhood",
		InputSchema: inputSchema(map[string]any{
			"session_id": map[string]any{"type": "string", "description": "Session ID (default session if omitted)"},
			"api_key":    map[string]any{"type": "string", "description": "Gemini API key override (configured key if omitted)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.Draft(ctx, sessionOr(p.SessionID), p.APIKey)
	}

	svc.register(srv, tool, endpoint, decodeInto[req])
}

func (svc *Service) registerSubmit(srv *mcp.Server) {
	type req struct {
		SessionID  string `json:"session_id"`
		WebhookURL string `json:"webhook_url"`
	}

	tool := &mcp.Tool{
		Name:        "immo_submit",
		Description: "Submit the reviewed record to the tracking spreadsheet (the record stays editable for resubmission)",
		InputSchema: inputSchema(map[string]any{
			"session_id":  map[string]any{"type": "string", "description": "Session ID (default session if omitted)"},
			"webhook_url": map[string]any{"type": "string", "description": "Webhook override (configured URL if omitted)"},
		}, nil),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		return svc.Submit(ctx, sessionOr(p.SessionID), p.WebhookURL)
	}

	svc.register(srv, tool, endpoint, decodeInto[req])
}

func decodeInto[T any](r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	var p T
	if len(r.Params.Arguments) > 0 {
		if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
			return nil, err
		}
	}

	// Every tool takes session_id; pull it out once so logging sees the
	// session the tool worked on.
	var scope struct {
		SessionID string `json:"session_id"`
	}
	if len(r.Params.Arguments) > 0 {
		json.Unmarshal(r.Params.Arguments, &scope)
	}
	return &kit.MCPDecodeResult{
		Request: &p,
		EnrichCtx: func(ctx context.Context) context.Context {
			return kit.WithSessionID(ctx, sessionOr(scope.SessionID))
		},
	}, nil
}
