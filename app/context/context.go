package context

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/changelock/app/config"
	"go.hackfix.me/changelock/db"
	"go.hackfix.me/changelock/host"
)

// Context contains common objects used by the application. It is passed around
// the application to avoid direct dependencies on external systems, and make
// testing easier.
type Context struct {
	Ctx     context.Context  // global context
	FS      vfs.FileSystem   // filesystem
	Env     Environment      // process environment
	Logger  *slog.Logger     // global logger
	TimeNow func() time.Time // current system time

	// Standard streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Config *config.Config
	// DB is the connection to the database that holds the lock table. If it's
	// nil, commands open it from the configured backend and DSN.
	DB *db.DB
	// Resolver determines the identity of this host. If it's nil, commands
	// pick one based on the runtime name.
	Resolver host.Resolver

	// Metadata
	Version *VersionInfo
}
