// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/outpass/cmd/outpass/cli"
	"github.com/bureau-foundation/outpass/lib/notify"
	"github.com/bureau-foundation/outpass/lib/tui"
)

// notificationBuffer bounds the notifications waiting for the viewer's
// event loop.
const notificationBuffer = 32

type tuiParams struct {
	clientFlags
}

func tuiCommand(app *App) *cli.Command {
	var params tuiParams

	return &cli.Command{
		Name:    "tui",
		Summary: "Interactive workspace viewer",
		Description: `Open the terminal viewer on the stored session's workspace.

The left pane lists the workspace's screens; the right pane shows the
current one. Staff, wardens and year incharges approve or reject
pending outpasses with 'a' and 'r' after a confirmation. Students
switch tabs with 1-4. Log in first with 'outpass login'; a session
that expires while the viewer is open returns it to the logged-out
workspace.`,
		Usage: "outpass tui [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("tui", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			notifications := notify.NewChannel(notificationBuffer)
			conn, err := app.connectWith(params.clientFlags, "tui", notifications)
			if err != nil {
				return err
			}
			defer conn.Close()

			model := tui.NewModel(tui.Config{
				Shell:         conn.shell,
				Context:       conn.ctx(),
				Notifications: notifications.C,
			})
			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(conn.ctx()))
			if _, err := program.Run(); err != nil {
				return cli.Internal("viewer: %w", err)
			}
			return nil
		},
	}
}
