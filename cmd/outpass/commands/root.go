// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the outpass CLI command tree. Every command
// runs against one [shell.Shell]: the stored session decides the
// workspace, the portal client reports authorization failures back to
// the session manager, and the profile gate guards student actions
// exactly as the interactive viewer does.
package commands

import (
	"github.com/bureau-foundation/outpass/cmd/outpass/cli"
)

// Root builds the complete command tree bound to app.
func Root(app *App) *cli.Command {
	return &cli.Command{
		Name: "outpass",
		Description: `outpass: institutional outpass client.

Log in as a student, staff member, warden, watchman, year incharge or
admin; file, review and approve outpass requests; read the notice
board and manage the directory. The stored session decides which
commands are available.`,
		HelpOutput: app.Stderr,
		Subcommands: []*cli.Command{
			loginCommand(app),
			logoutCommand(app),
			whoamiCommand(app),
			outpassCommand(app),
			profileCommand(app),
			noticesCommand(app),
			subjectsCommand(app),
			staffCommand(app),
			studentsCommand(app),
			adminCommand(app),
			workspaceCommand(app),
			tuiCommand(app),
			versionCommand(app),
		},
	}
}
