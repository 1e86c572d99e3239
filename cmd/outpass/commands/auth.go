// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/outpass/cmd/outpass/cli"
	"github.com/bureau-foundation/outpass/lib/session"
	"github.com/bureau-foundation/outpass/lib/workspace"
	"github.com/bureau-foundation/outpass/portal"
)

// parseRole validates a --role value, suggesting the nearest role on a
// typo.
func parseRole(value string) (session.Role, error) {
	role, err := session.ParseRole(value)
	if err == nil {
		return role, nil
	}
	names := make([]string, 0, len(session.AllRoles()))
	for _, candidate := range session.AllRoles() {
		names = append(names, string(candidate))
	}
	if suggestion := cli.Suggest(value, names); suggestion != "" {
		return "", cli.Validation("unknown role %q (did you mean %q?)", value, suggestion)
	}
	return "", cli.Validation("unknown role %q (want one of %v)", value, names)
}

// sessionResult is the JSON form of the stored session.
type sessionResult struct {
	LoggedIn    bool                `json:"logged_in"`
	Role        session.Role        `json:"role,omitempty"`
	RoleName    string              `json:"role_name,omitempty"`
	Workspace   workspace.Workspace `json:"workspace"`
	Landing     workspace.Screen    `json:"landing"`
	Fingerprint string              `json:"token_fingerprint,omitempty"`
}

func describeSession(current session.Session) sessionResult {
	target := workspace.For(current)
	result := sessionResult{
		LoggedIn:    current.LoggedIn,
		Workspace:   target,
		Landing:     workspace.ScreensFor(target).Landing,
		Fingerprint: session.Fingerprint(current.Token),
	}
	if current.LoggedIn {
		result.Role = current.Role
		result.RoleName = current.Role.DisplayName()
	}
	return result
}

type loginParams struct {
	clientFlags
	cli.JSONOutput
	Role         string `json:"role"  flag:"role,r"        desc:"role to log in as (student, staff, warden, watchman, year_incharge, admin)" default:"student"`
	Email        string `json:"email" flag:"email,e"       desc:"account email"`
	PasswordFile string `json:"-"     flag:"password-file" desc:"read the password from this file (- for stdin) instead of prompting"`
}

func loginCommand(app *App) *cli.Command {
	var params loginParams

	return &cli.Command{
		Name:    "login",
		Summary: "Log in and store the session",
		Description: `Exchange email and password for a session token at the role's login
endpoint and store the session. The password is read from the terminal
with echo disabled, or from --password-file.

A new login replaces any stored session.`,
		Usage: "outpass login --role ROLE --email EMAIL [flags]",
		Examples: []cli.Example{
			{
				Description: "Log in as a student",
				Command:     "outpass login --email asha@jit.college",
			},
			{
				Description: "Log in as a warden with the password in a file",
				Command:     "outpass login -r warden -e warden@jit.college --password-file ~/.warden-pass",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("login", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			role, err := parseRole(params.Role)
			if err != nil {
				return err
			}
			if params.Email == "" {
				return cli.Validation("--email is required")
			}

			conn, err := app.connect(params.clientFlags, "login")
			if err != nil {
				return err
			}
			defer conn.Close()

			password, err := cli.ReadPassword(params.PasswordFile, app.Stderr)
			if err != nil {
				return cli.FromError(err)
			}
			defer password.Close()

			current, err := conn.shell.Login(conn.ctx(), role, portal.Credentials{
				Email:    params.Email,
				Password: password.String(),
			})
			if err != nil {
				return cli.FromError(err)
			}
			conn.logger.Info("logged in", "role", role, "token", session.Fingerprint(current.Token))

			result := describeSession(current)
			if done, err := params.EmitJSON(app.Stdout, result); done {
				return err
			}
			fmt.Fprintf(app.Stdout, "Logged in as %s.\n", role.DisplayName())
			return nil
		},
	}
}

type logoutParams struct {
	clientFlags
}

func logoutCommand(app *App) *cli.Command {
	var params logoutParams

	return &cli.Command{
		Name:        "logout",
		Summary:     "Clear the stored session",
		Description: "Remove the stored token, login marker and role. Logging out twice is harmless.",
		Flags:       func() *pflag.FlagSet { return cli.FlagsFromParams("logout", &params) },
		Run: func(args []string) error {
			conn, err := app.connect(params.clientFlags, "logout")
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.shell.Logout(conn.ctx()); err != nil {
				return cli.FromError(err)
			}
			fmt.Fprintln(app.Stdout, "Logged out.")
			return nil
		},
	}
}

type whoamiParams struct {
	clientFlags
	cli.JSONOutput
}

func whoamiCommand(app *App) *cli.Command {
	var params whoamiParams

	return &cli.Command{
		Name:    "whoami",
		Summary: "Show the stored session",
		Description: `Resolve the stored session and print its role and workspace. The token
itself is never printed; its fingerprint identifies it in logs.

Exits 1 when no one is logged in.`,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("whoami", &params) },
		Run: func(args []string) error {
			conn, err := app.connect(params.clientFlags, "whoami")
			if err != nil {
				return err
			}
			defer conn.Close()

			result := describeSession(conn.shell.Session(conn.ctx()))
			if done, err := params.EmitJSON(app.Stdout, result); done {
				if err == nil && !result.LoggedIn {
					return &cli.ExitError{Code: 1}
				}
				return err
			}
			if !result.LoggedIn {
				fmt.Fprintln(app.Stdout, "Not logged in.")
				return &cli.ExitError{Code: 1}
			}
			fmt.Fprintf(app.Stdout, "Role:       %s\n", result.RoleName)
			fmt.Fprintf(app.Stdout, "Workspace:  %s\n", result.Workspace)
			fmt.Fprintf(app.Stdout, "Landing:    %s\n", result.Landing.Name())
			if result.Fingerprint != "" {
				fmt.Fprintf(app.Stdout, "Token:      %s\n", result.Fingerprint)
			}
			return nil
		},
	}
}
