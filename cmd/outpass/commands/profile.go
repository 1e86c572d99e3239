// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/outpass/cmd/outpass/cli"
	"github.com/bureau-foundation/outpass/lib/profile"
	"github.com/bureau-foundation/outpass/lib/session"
	"github.com/bureau-foundation/outpass/portal"
)

func profileCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "profile",
		Summary: "Show and update your profile",
		Description: `Show or update the logged-in user's profile. Students must complete
their profile before they can locate staff, view subjects or request
an outpass; 'profile check' lists what is missing.`,
		Subcommands: []*cli.Command{
			profileShowCommand(app),
			profileCheckCommand(app),
			profileUpdateCommand(app),
		},
	}
}

type profileShowParams struct {
	clientFlags
	cli.JSONOutput
}

func profileShowCommand(app *App) *cli.Command {
	var params profileShowParams

	return &cli.Command{
		Name:    "show",
		Summary: "Show your profile",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("show", &params) },
		Run: func(args []string) error {
			conn, err := app.connect(params.clientFlags, "profile/show")
			if err != nil {
				return err
			}
			defer conn.Close()

			role, err := conn.role()
			if err != nil {
				return err
			}
			if role != session.Student {
				member, err := conn.shell.Portal.MemberProfile(conn.ctx(), role)
				if err != nil {
					return cli.FromError(err)
				}
				if done, err := params.EmitJSON(app.Stdout, member); done {
					return err
				}
				return writeMember(app.Stdout, role, member)
			}

			student, err := conn.shell.LoadStudentProfile(conn.ctx())
			if err != nil {
				return cli.FromError(err)
			}
			if done, err := params.EmitJSON(app.Stdout, student); done {
				return err
			}
			return writeStudent(app.Stdout, student)
		},
	}
}

func writeMember(w io.Writer, role session.Role, member portal.Member) error {
	writer := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	rows := [][2]string{
		{"Role", role.DisplayName()},
		{"Name", member.Name},
		{"Email", member.Email},
		{"Phone", member.Phone},
		{"Department", member.Department},
		{"Designation", member.Designation},
		{"Gender", member.Gender},
		{"Handling years", strings.Join(member.HandlingYear, ", ")},
		{"Handling batches", strings.Join(member.HandlingBatch, ", ")},
		{"Handling departments", strings.Join(member.HandlingDepartment, ", ")},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(writer, "%s:\t%s\n", row[0], row[1])
	}
	return writer.Flush()
}

func writeStudent(w io.Writer, student profile.Student) error {
	writer := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	for _, field := range profile.Required(student) {
		value := student.Text(field)
		if !student.Filled(field) {
			value = "(missing)"
		}
		fmt.Fprintf(writer, "%s:\t%s\n", field.Label(), value)
	}
	fmt.Fprintf(writer, "Completion:\t%d%%\n", profile.Completion(student))
	return writer.Flush()
}

// completenessResult is the JSON form of 'profile check'.
type completenessResult struct {
	Complete   bool     `json:"complete"`
	Completion int      `json:"completion"`
	Missing    []string `json:"missing"`
}

type profileCheckParams struct {
	clientFlags
	cli.JSONOutput
}

func profileCheckCommand(app *App) *cli.Command {
	var params profileCheckParams

	return &cli.Command{
		Name:    "check",
		Summary: "Check whether your student profile is complete",
		Description: `Fetch the student profile and list the required fields that are still
empty. Hostel residents need hostel name and room number; day scholars
need bus number and boarding point.

Exits 1 when the profile is incomplete.`,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("check", &params) },
		Run: func(args []string) error {
			conn, err := app.connect(params.clientFlags, "profile/check")
			if err != nil {
				return err
			}
			defer conn.Close()

			if _, err := conn.requireRole("profile check", session.Student); err != nil {
				return err
			}
			student, err := conn.shell.LoadStudentProfile(conn.ctx())
			if err != nil {
				return cli.FromError(err)
			}

			missing := profile.Missing(student)
			result := completenessResult{
				Complete:   len(missing) == 0,
				Completion: profile.Completion(student),
				Missing:    make([]string, len(missing)),
			}
			for index, field := range missing {
				result.Missing[index] = string(field)
			}

			if done, err := params.EmitJSON(app.Stdout, result); done {
				if err == nil && !result.Complete {
					return &cli.ExitError{Code: 1}
				}
				return err
			}
			if result.Complete {
				fmt.Fprintf(app.Stdout, "Profile complete (%d%%).\n", result.Completion)
				return nil
			}
			fmt.Fprintf(app.Stdout, "Profile %d%% complete. Missing:\n", result.Completion)
			for _, field := range missing {
				fmt.Fprintf(app.Stdout, "  %s (%s)\n", field.Label(), field)
			}
			return &cli.ExitError{Code: 1}
		},
	}
}

type profileUpdateParams struct {
	clientFlags
	File string `json:"-" flag:"file,f" desc:"JSON or JSONC object of fields to change (- for stdin)"`
}

func profileUpdateCommand(app *App) *cli.Command {
	var params profileUpdateParams

	return &cli.Command{
		Name:    "update",
		Summary: "Change profile fields",
		Description: `Send changed profile fields to the service. Fields come from --file, a
JSON object that may carry comments, and from key=value arguments,
which override the file. Values that parse as JSON keep their type.`,
		Usage: "outpass profile update [--file FILE] [key=value...]",
		Examples: []cli.Example{
			{
				Description: "Record a day scholar's bus details",
				Command:     "outpass profile update residencetype='day scholar' busno=12 boardingpoint='Central Bus Stand'",
			},
			{
				Description: "Apply a prepared file",
				Command:     "outpass profile update --file profile.jsonc",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("update", &params) },
		Run: func(args []string) error {
			changes, err := collectPayload(app, params.File, args)
			if err != nil {
				return err
			}

			conn, err := app.connect(params.clientFlags, "profile/update")
			if err != nil {
				return err
			}
			defer conn.Close()

			role, err := conn.role()
			if err != nil {
				return err
			}
			conn.logger.Info("updating profile", "fields", cli.DescribeKeys(changes))
			if role != session.Student {
				if err := conn.shell.Portal.UpdateMemberProfile(conn.ctx(), role, changes); err != nil {
					return cli.FromError(err)
				}
				fmt.Fprintln(app.Stdout, "Profile updated.")
				return nil
			}

			if err := conn.shell.Portal.UpdateStudentProfile(conn.ctx(), changes); err != nil {
				return cli.FromError(err)
			}
			student, err := conn.shell.LoadStudentProfile(conn.ctx())
			if err != nil {
				return cli.FromError(err)
			}
			fmt.Fprintf(app.Stdout, "Profile updated (%d%% complete).\n", profile.Completion(student))
			return nil
		},
	}
}

// collectPayload merges an optional payload file with key=value
// arguments. At least one field is required.
func collectPayload(app *App, path string, assignments []string) (map[string]any, error) {
	var payload map[string]any
	if path != "" {
		fromFile, err := cli.ReadPayload(path, app.Stdin)
		if err != nil {
			return nil, err
		}
		payload = fromFile
	}
	overrides, err := cli.ParseAssignments(assignments)
	if err != nil {
		return nil, err
	}
	payload = cli.MergePayload(payload, overrides)
	if len(payload) == 0 {
		return nil, cli.Validation("no fields given; pass --file or key=value arguments")
	}
	return payload, nil
}
