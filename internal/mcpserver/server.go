// Package mcpserver exposes the content workflow as MCP (Model Context
// Protocol) tools over stdio, so agents can draft and publish through the
// same ContentStore the CLI uses.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/slug"
	"github.com/starford/ansuz/internal/store"
)

// Server wraps the MCP server with content tools.
type Server struct {
	mcp   *server.MCPServer
	store store.ContentStore
}

// New creates an MCP server with all content tools registered.
func New(cs store.ContentStore) *Server {
	s := &Server{store: cs}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_content",
		mcp.WithDescription("List posts or pages, optionally filtered by status (draft, published, archived)."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Content kind: post or page")),
		mcp.WithString("status", mcp.Description("Optional status filter")),
	), s.listContent)

	s.mcp.AddTool(mcp.NewTool("read_content",
		mcp.WithDescription("Read one post or page by id."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Content kind: post or page")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
	), s.readContent)

	s.mcp.AddTool(mcp.NewTool("create_content",
		mcp.WithDescription("Create a post or page as a draft. The slug is derived from the title "+
			"unless given explicitly; explicit slugs must be lowercase alphanumerics separated by single hyphens."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Content kind: post or page")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Human-readable title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown body")),
		mcp.WithString("slug", mcp.Description("Optional explicit slug")),
		mcp.WithString("excerpt", mcp.Description("Optional excerpt (posts only)")),
	), s.createContent)

	s.mcp.AddTool(mcp.NewTool("update_content",
		mcp.WithDescription("Overwrite the title, slug, or body of an existing record. "+
			"Omitted fields keep their current value."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Content kind: post or page")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("slug", mcp.Description("New slug")),
		mcp.WithString("content", mcp.Description("New Markdown body")),
	), s.updateContent)

	s.mcp.AddTool(mcp.NewTool("publish_content",
		mcp.WithDescription("Publish a record. The first publish stamps the publication time; republishing keeps it."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Content kind: post or page")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
	), s.publishContent)

	s.mcp.AddTool(mcp.NewTool("delete_content",
		mcp.WithDescription("Delete a record permanently."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Content kind: post or page")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
	), s.deleteContent)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func requireKind(req mcp.CallToolRequest) (models.Kind, error) {
	raw, err := req.RequireString("kind")
	if err != nil {
		return "", err
	}
	kind := models.Kind(raw)
	if kind != models.KindPost && kind != models.KindPage {
		return "", fmt.Errorf("kind must be post or page, got %q", raw)
	}
	return kind, nil
}

func (s *Server) listContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status := models.Status("")
	if v, sErr := req.RequireString("status"); sErr == nil {
		status = models.Status(v)
	}
	records, err := s.store.List(ctx, kind, status)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(records, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	record, err := s.store.Get(ctx, kind, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(record, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	draft := models.Draft{
		Title:   title,
		Content: content,
		Status:  models.StatusDraft,
	}
	if v, sErr := req.RequireString("slug"); sErr == nil {
		draft.Slug = v
	}
	if v, eErr := req.RequireString("excerpt"); eErr == nil {
		draft.Excerpt = v
	}
	if draft.Slug == "" {
		draft.Slug = slug.Generate(title)
	}
	if err := draft.Validate(kind); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	record, err := s.store.Create(ctx, kind, draft)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created %s %s (slug %s)", kind, record.ID, record.Slug)), nil
}

func (s *Server) updateContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	record, err := s.store.Get(ctx, kind, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	draft := draftOf(record)
	if v, tErr := req.RequireString("title"); tErr == nil && v != "" {
		draft.Title = v
	}
	if v, sErr := req.RequireString("slug"); sErr == nil && v != "" {
		draft.Slug = v
	}
	if v, cErr := req.RequireString("content"); cErr == nil && v != "" {
		draft.Content = v
	}
	if err := draft.Validate(kind); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if _, err := s.store.Update(ctx, kind, id, draft); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated %s %s", kind, id)), nil
}

func (s *Server) publishContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	record, err := s.store.Get(ctx, kind, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	draft := draftOf(record)
	draft.Status = models.StatusPublished
	if _, err := s.store.Update(ctx, kind, id, draft); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("published %s %s", kind, id)), nil
}

func (s *Server) deleteContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.Delete(ctx, kind, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %s %s", kind, id)), nil
}

func draftOf(r *models.Record) models.Draft {
	return models.Draft{
		Title:       r.Title,
		Slug:        r.Slug,
		Content:     r.Content,
		Excerpt:     r.Excerpt,
		CoverImage:  r.CoverImage,
		Status:      r.Status,
		AuthorID:    r.AuthorID,
		PublishedAt: r.PublishedAt,
	}
}
