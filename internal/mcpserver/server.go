// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes golinks tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/golinks/internal/linkservice"
	"github.com/starford/golinks/internal/models"
	"github.com/starford/golinks/internal/resolver"
	"github.com/starford/golinks/internal/search"
)

// NavigationURI is the resource holding NavigationContract.
const NavigationURI = "golinks://navigation-state"

// listPath is the base of the navigation URLs returned by search_links.
const listPath = "/api/links"

// Service is the link capability the tools depend on.
type Service interface {
	Create(ctx context.Context, in models.LinkInput) (*models.Link, error)
	Find(ctx context.Context, source string) (*models.Link, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, st search.State) (*linkservice.Results, error)
	Resolve(ctx context.Context, source string) (*resolver.Resolution, error)
}

var _ Service = (*linkservice.Service)(nil)

// Server wraps the MCP server with golinks tools.
type Server struct {
	mcp *server.MCPServer
	svc Service
}

// New creates a new MCP server with all golinks tools registered.
func New(svc Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"golinks",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("resolve_link",
		mcp.WithDescription("Follow a short link through its aliases and return the final destination."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Short link key, e.g. docs")),
	), s.resolveLink)

	s.mcp.AddTool(mcp.NewTool("search_links",
		mcp.WithDescription("Search short links by meaning or spelling. "+
			"Read the golinks://navigation-state resource for the meaning of each parameter."),
		mcp.WithString("query", mcp.Description("Search text; empty lists all links by recency")),
		mcp.WithString("method", mcp.Description("Matching method"),
			mcp.Enum(methodNames()...), mcp.DefaultString(search.Semantic.String())),
		mcp.WithString("sort", mcp.Description("Sort key"),
			mcp.Enum("relevance", "alphabetical", "created", "updated"), mcp.DefaultString("relevance")),
		mcp.WithString("order", mcp.Description("Sort direction"),
			mcp.Enum("desc", "asc"), mcp.DefaultString("desc")),
		mcp.WithNumber("page", mcp.Description("1-based page number"), mcp.DefaultNumber(search.DefaultPage)),
		mcp.WithNumber("limit", mcp.Description("Page size"), mcp.DefaultNumber(search.DefaultLimit)),
	), s.searchLinks)

	s.mcp.AddTool(mcp.NewTool("get_link",
		mcp.WithDescription("Read a short link by its exact key without following aliases."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Short link key")),
	), s.getLink)

	s.mcp.AddTool(mcp.NewTool("create_link",
		mcp.WithDescription("Register a new short link. With is_alias set, target names another short link key."),
		mcp.WithString("source", mcp.Required(), mcp.Description("New short link key")),
		mcp.WithString("target", mcp.Description("Destination URL, or the aliased key")),
		mcp.WithBoolean("is_alias", mcp.Description("Treat target as another short link key")),
		mcp.WithString("description", mcp.Description("Free-form description")),
	), s.createLink)

	s.mcp.AddTool(mcp.NewTool("delete_link",
		mcp.WithDescription("Delete a short link by its exact key. Aliases pointing at it are left dangling."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Short link key")),
	), s.deleteLink)

	s.mcp.AddTool(mcp.NewTool("get_navigation_contract",
		mcp.WithDescription("Returns the search page query-string grammar and its defaults."),
	), s.getNavigationContract)

	s.mcp.AddResource(
		mcp.NewResource(NavigationURI, "Navigation State",
			mcp.WithResourceDescription("Query-string grammar for search pages: fields, defaults and methods."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNavigationResource,
	)

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

func methodNames() []string {
	out := make([]string, len(search.Methods))
	for i, m := range search.Methods {
		out[i] = m.String()
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) resolveLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Resolve(ctx, source)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"target": res.Link.Target,
		"chain":  res.Chain,
		"link":   res.Link,
	})
}

// stateFromRequest builds a search state from tool arguments. Absent
// arguments keep their defaults.
func stateFromRequest(req mcp.CallToolRequest) (search.State, error) {
	st := search.DefaultState()
	st.Search.Query = strings.TrimSpace(req.GetString("query", ""))
	st.Paging.Page = req.GetInt("page", search.DefaultPage)
	st.Paging.Limit = req.GetInt("limit", search.DefaultLimit)

	var err error
	if st.Search.Method, err = search.ParseMethod(req.GetString("method", search.Semantic.String())); err != nil {
		return st, err
	}
	if st.Sort.By, err = search.ParseSortBy(req.GetString("sort", search.Relevance.String())); err != nil {
		return st, err
	}
	if st.Sort.Order, err = search.ParseOrder(req.GetString("order", search.Descending.String())); err != nil {
		return st, err
	}
	return st, nil
}

func (s *Server) searchLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := stateFromRequest(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Search(ctx, st)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(struct {
		*linkservice.Results
		Links search.Navigation `json:"links"`
	}{res, search.Navigate(listPath, "", st, res.LastPage)})
}

func (s *Server) getLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	l, err := s.svc.Find(ctx, source)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(l)
}

func (s *Server) createLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	l, err := s.svc.Create(ctx, models.LinkInput{
		Source:      source,
		Target:      req.GetString("target", ""),
		IsAlias:     req.GetBool("is_alias", false),
		Description: req.GetString("description", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (id %d)", l.Source, l.ID)), nil
}

func (s *Server) deleteLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	l, err := s.svc.Find(ctx, source)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Delete(ctx, l.ID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", l.Source)), nil
}

func (s *Server) getNavigationContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NavigationContract), nil
}

func (s *Server) readNavigationResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      NavigationURI,
			MIMEType: "text/markdown",
			Text:     NavigationContract,
		},
	}, nil
}
