// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/outpass/cmd/outpass/cli"
	"github.com/bureau-foundation/outpass/lib/profile"
	"github.com/bureau-foundation/outpass/lib/version"
	"github.com/bureau-foundation/outpass/lib/workspace"
)

func workspaceCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "workspace",
		Summary: "Inspect role workspaces",
		Subcommands: []*cli.Command{
			workspaceScreensCommand(app),
		},
	}
}

// screenEntry is one screen of 'workspace screens --json'.
type screenEntry struct {
	Screen  workspace.Screen  `json:"screen"`
	Tab     workspace.TabName `json:"tab,omitempty"`
	Landing bool              `json:"landing,omitempty"`
	Gate    profile.Action    `json:"gate,omitempty"`
}

type workspaceScreensParams struct {
	clientFlags
	cli.JSONOutput
	Role string `json:"role" flag:"role,r" desc:"show this role's workspace instead of the stored session's ('auth' for the logged-out workspace)"`
}

func workspaceScreensCommand(app *App) *cli.Command {
	var params workspaceScreensParams

	return &cli.Command{
		Name:    "screens",
		Summary: "List the screens of a workspace",
		Description: `List every screen reachable in the stored session's workspace, or in
the workspace of --role. Student screens are grouped by tab; screens
marked with a gate need a complete profile.`,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("screens", &params) },
		Run: func(args []string) error {
			var target workspace.Workspace
			switch params.Role {
			case "":
				conn, err := app.connect(params.clientFlags, "workspace/screens")
				if err != nil {
					return err
				}
				target = conn.shell.Router.Workspace()
				conn.Close()
			case string(workspace.Auth):
				target = workspace.Auth
			default:
				role, err := parseRole(params.Role)
				if err != nil {
					return err
				}
				target = workspace.ForRole(role)
			}

			graph := workspace.ScreensFor(target)
			entries := make([]screenEntry, 0, len(graph.Screens()))
			for _, screen := range graph.Screens() {
				entry := screenEntry{Screen: screen, Landing: screen == graph.Landing}
				if tab, ok := graph.TabOf(screen); ok {
					entry.Tab = tab.Name
				}
				if action, gated := profile.ActionFor(screen); gated {
					entry.Gate = action
				}
				entries = append(entries, entry)
			}
			if done, err := params.EmitJSON(app.Stdout, entries); done {
				return err
			}

			fmt.Fprintf(app.Stdout, "Workspace %s\n", target)
			var currentTab workspace.TabName
			for _, entry := range entries {
				indent := "  "
				if graph.Tabbed() {
					if entry.Tab != currentTab {
						currentTab = entry.Tab
						fmt.Fprintf(app.Stdout, "  %s\n", currentTab)
					}
					indent = "    "
				}
				line := indent + entry.Screen.Name()
				if entry.Landing {
					line += " (landing)"
				}
				if entry.Gate != "" {
					line += fmt.Sprintf(" [needs complete profile to %s]", entry.Gate)
				}
				fmt.Fprintln(app.Stdout, line)
			}
			return nil
		},
	}
}

type versionParams struct {
	cli.JSONOutput
}

func versionCommand(app *App) *cli.Command {
	var params versionParams

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("version", &params) },
		Run: func(args []string) error {
			if done, err := params.EmitJSON(app.Stdout, version.Current()); done {
				return err
			}
			fmt.Fprintf(app.Stdout, "outpass %s\n", version.Full())
			return nil
		},
	}
}
