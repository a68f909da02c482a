package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/lo"
	"golang.org/x/text/language"

	"github.com/aretw0/mold"
	httpAdapter "github.com/aretw0/mold/pkg/adapters/http"
	"github.com/aretw0/mold/pkg/bind"
	"github.com/aretw0/mold/pkg/message"
	"github.com/aretw0/mold/pkg/serialize"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const typesURI = "mold://types"

// App defines what the MCP server needs from a Mold. It is the same surface
// the HTTP playground uses.
type App interface {
	httpAdapter.App
}

// BindArgs are the arguments of the bind tool.
type BindArgs struct {
	Type      string         `json:"type"`
	Params    map[string]any `json:"params"`
	Locale    string         `json:"locale,omitempty"`
	Format    string         `json:"format,omitempty"`
	Include   []string       `json:"include,omitempty"`
	Exclude   []string       `json:"exclude,omitempty"`
	Recursive bool           `json:"recursive,omitempty"`
	Version   *float64       `json:"version,omitempty"`
}

// BindResult is the structured answer of the bind tool. Exactly one of
// Output and Errors is set.
type BindResult struct {
	Output string            `json:"output,omitempty" jsonschema_description:"The bound value, serialized in Format"`
	Format string            `json:"format,omitempty" jsonschema_description:"Format of Output: json, xml or yaml"`
	Errors []message.Message `json:"errors,omitempty" jsonschema_description:"One localized message per rejected parameter"`
}

// Server exposes a Mold as MCP tools: bind, describe and types.
type Server struct {
	app       App
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. With the stdio transport it must not write to
// stdout.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(app App, opts ...Option) *Server {
	s := &Server{
		app:    app,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		mcpServer: server.NewMCPServer("mold-mcp", strings.TrimSpace(mold.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves on Stdin/Stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over Server-Sent Events on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://" + addr
	if strings.HasPrefix(addr, ":") {
		baseURL = "http://localhost" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "mcp server error")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "could not stop server gracefully")
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: bind
	bindTool := mcp.NewTool("bind",
		mcp.WithDescription("Bind request parameters into a new value of a registered type and serialize it back. Rejected parameters come back as localized messages."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Registered type name, also the parameter prefix (e.g. client)")),
		mcp.WithObject("params", mcp.Required(), mcp.Description("Parameters keyed by dotted path (client.address.street); values are strings or arrays of strings")),
		mcp.WithString("locale", mcp.Description("BCP 47 locale used for parsing and messages (optional)")),
		mcp.WithString("format", mcp.Enum("json", "xml", "yaml"), mcp.Description("Output format (optional)")),
		mcp.WithArray("include", mcp.WithStringItems(), mcp.Description("Dotted paths to include")),
		mcp.WithArray("exclude", mcp.WithStringItems(), mcp.Description("Dotted paths to exclude")),
		mcp.WithBoolean("recursive", mcp.Description("Emit nested objects without explicit includes")),
		mcp.WithNumber("version", mcp.Description("Active version; fields introduced later are hidden")),
		mcp.WithOutputSchema[BindResult](),
	)
	s.mcpServer.AddTool(bindTool, mcp.NewStructuredToolHandler(s.handleBind))

	// TOOL: describe
	s.mcpServer.AddTool(mcp.NewTool("describe",
		mcp.WithDescription("Get the OpenAPI schema of the serialized form of a registered type."),
		mcp.WithString("type", mcp.Required(), mcp.Description("Registered type name")),
		mcp.WithNumber("version", mcp.Description("Hide fields introduced after this version (optional)")),
	), s.handleDescribe)

	// TOOL: types
	s.mcpServer.AddTool(mcp.NewTool("types",
		mcp.WithDescription("List the registered type names."),
	), s.handleTypes)
}

func (s *Server) handleBind(ctx context.Context, request mcp.CallToolRequest, args BindArgs) (BindResult, error) {
	typ, ok := s.app.Types().Lookup(args.Type)
	if !ok {
		return BindResult{}, errors.Newf("unknown type %q", args.Type)
	}
	tag := s.app.Locale()
	if args.Locale != "" {
		t, err := language.Parse(args.Locale)
		if err != nil {
			return BindResult{}, errors.Wrapf(err, "invalid locale %q", args.Locale)
		}
		tag = t
	}
	format := s.app.Defaults().Format
	if args.Format != "" {
		f, err := serialize.ParseFormat(args.Format)
		if err != nil {
			return BindResult{}, err
		}
		format = f
	}

	target := reflect.New(typ)
	if err := s.app.Bind(args.Type, target.Interface(), paramsOf(args.Params), tag); err != nil {
		var errs *bind.Errors
		if !errors.As(err, &errs) {
			s.logger.Error("MCP Bind failed", "type", args.Type, "error", err)
			return BindResult{}, err
		}
		return BindResult{Errors: s.app.Localize(err, tag)}, nil
	}

	session := s.app.From(target.Interface(), args.Type).
		As(format).
		Include(args.Include...).
		Exclude(args.Exclude...)
	if args.Recursive {
		session.Recursive()
	}
	if args.Version != nil {
		session.Version(*args.Version)
	}
	out, err := session.Serialize()
	if err != nil {
		s.logger.Error("MCP Serialize failed", "type", args.Type, "error", err)
		return BindResult{}, err
	}
	return BindResult{Output: out, Format: string(format)}, nil
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typ, ok := s.app.Types().Lookup(name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown type %q", name)), nil
	}
	version, versioned := request.GetArguments()["version"].(float64)

	body, err := json.MarshalToString(s.app.Types().OpenAPISchema(typ, version, versioned))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("describe failed: %v", err)), nil
	}
	return mcp.NewToolResultText(body), nil
}

func (s *Server) handleTypes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := s.typeList()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("types failed: %v", err)), nil
	}
	return mcp.NewToolResultText(body), nil
}

func (s *Server) typeList() (string, error) {
	names := s.app.Types().Names()
	slices.Sort(names)
	return json.MarshalToString(names)
}

func (s *Server) registerResources() {
	// EXPOSE: mold://types
	s.mcpServer.AddResource(mcp.NewResource(typesURI, "Registered Types",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		body, err := s.typeList()
		if err != nil {
			return nil, errors.Wrap(err, "failed to list types")
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      typesURI,
				MIMEType: "application/json",
				Text:     body,
			},
		}, nil
	})
}

// paramsOf turns JSON tool arguments into parameters. Arrays contribute one
// value per element; other values contribute their text.
func paramsOf(args map[string]any) bind.Params {
	params := make(bind.Params, len(args))
	for key, v := range args {
		switch v := v.(type) {
		case []any:
			params[key] = lo.Map(v, func(item any, _ int) string { return text(item) })
		case nil:
			params[key] = nil
		default:
			params[key] = []string{text(v)}
		}
	}
	return params
}

func text(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
