// Package cli implements bookctl, a terminal front-end for the session
// booking server.  Each invocation loads the full session list into a
// mirror, applies one action through it and prints the result.
package cli

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iliyamo/cinema-session-booking/internal/client"
	"github.com/iliyamo/cinema-session-booking/internal/mirror"
	"github.com/iliyamo/cinema-session-booking/internal/view"
)

const defaultServer = "http://localhost:4321"

// app carries the settings shared by every subcommand.
type app struct {
	v  *viper.Viper
	in io.Reader
}

// NewRootCommand builds the bookctl command tree.  Prompts read from in.
func NewRootCommand(in io.Reader) *cobra.Command {
	a := &app{v: viper.New(), in: in}

	root := &cobra.Command{
		Use:           "bookctl",
		Short:         "Manage cinema sessions and bookings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("server", defaultServer, "booking server base URL")
	root.PersistentFlags().Duration("timeout", 10*time.Second, "per-request timeout")
	_ = a.v.BindPFlag("server", root.PersistentFlags().Lookup("server"))
	_ = a.v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))

	// BOOKCTL_SERVER, BOOKCTL_TIMEOUT
	a.v.SetEnvPrefix("BOOKCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(a.listCommand(), a.sessionCommand(), a.bookingCommand())
	return root
}

// Execute runs bookctl against os.Args.
func Execute(ctx context.Context, in io.Reader) error {
	return NewRootCommand(in).ExecuteContext(ctx)
}

// session is one loaded mirror plus the document it renders into.
type session struct {
	mirror *mirror.Mirror
	doc    *view.Document
}

// open fetches the session list from the server.
func (a *app) open(cmd *cobra.Command) (*session, error) {
	timeout := a.v.GetDuration("timeout")
	c := client.New(a.v.GetString("server"), &http.Client{Timeout: timeout})
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelError}))

	doc := view.NewDocument()
	m := mirror.New(c, doc, logger)
	if err := m.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return &session{mirror: m, doc: doc}, nil
}

func (a *app) prompter(cmd *cobra.Command) mirror.Prompter {
	return newLinePrompter(a.in, cmd.OutOrStdout())
}
