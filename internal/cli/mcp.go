package cli

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/aretw0/mold"
	"github.com/aretw0/mold/pkg/adapters/mcp"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// ErrUnknownTransport is returned for transports other than stdio and sse.
var ErrUnknownTransport = errors.New("unknown transport")

// ServeMCP runs the MCP server on the given transport. addr is only used by
// the sse transport.
func ServeMCP(ctx context.Context, m *mold.Mold, transport, addr string, logger *slog.Logger) error {
	srv := mcp.NewServer(m, mcp.WithLogger(logger))
	switch transport {
	case TransportStdio:
		logger.Info("Starting mold MCP Server (Stdio)")
		return srv.ServeStdio()
	case TransportSSE:
		return srv.ServeSSE(ctx, addr)
	}
	return errors.Wrapf(ErrUnknownTransport, "%q (supported: stdio, sse)", transport)
}
