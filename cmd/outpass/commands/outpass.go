// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/outpass/cmd/outpass/cli"
	"github.com/bureau-foundation/outpass/lib/outpass"
	"github.com/bureau-foundation/outpass/lib/session"
	"github.com/bureau-foundation/outpass/lib/tui"
)

func outpassCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "outpass",
		Summary: "File, review and approve outpasses",
		Description: `Outpass requests move through staff, warden and year incharge sign-off.
Students file and track their own requests; approvers list what awaits
them and approve or reject it. Every list shows emergency requests
first and is re-fetched after each action.`,
		Subcommands: []*cli.Command{
			outpassListCommand(app),
			outpassPendingCommand(app),
			outpassHistoryCommand(app),
			outpassNewCommand(app),
			outpassActCommand(app, outpass.Approve),
			outpassActCommand(app, outpass.Reject),
		},
	}
}

type outpassListParams struct {
	clientFlags
	cli.JSONOutput
}

func outpassListCommand(app *App) *cli.Command {
	var params outpassListParams

	return &cli.Command{
		Name:        "list",
		Summary:     "List your own outpasses (students)",
		Description: "List the logged-in student's outpass requests with their sign-off status.",
		Flags:       func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(args []string) error {
			conn, err := app.connect(params.clientFlags, "outpass/list")
			if err != nil {
				return err
			}
			defer conn.Close()

			if _, err := conn.requireRole("outpass list", session.Student); err != nil {
				return err
			}
			queue, err := conn.shell.HistoryQueue(session.Student)
			if err != nil {
				return cli.Internal("%w", err)
			}
			return emitQueue(app, conn, queue, params.JSONOutput, "You have not requested any outpass yet.")
		},
	}
}

type outpassPendingParams struct {
	clientFlags
	cli.JSONOutput
}

func outpassPendingCommand(app *App) *cli.Command {
	var params outpassPendingParams

	return &cli.Command{
		Name:    "pending",
		Summary: "List outpasses awaiting your sign-off",
		Description: `List the outpasses waiting for the logged-in staff member, warden or
year incharge. Pass an id to 'outpass approve' or 'outpass reject'.`,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("pending", &params) },
		Run: func(args []string) error {
			conn, err := app.connect(params.clientFlags, "outpass/pending")
			if err != nil {
				return err
			}
			defer conn.Close()

			role, err := conn.requireRole("outpass pending", session.Staff, session.Warden, session.YearIncharge)
			if err != nil {
				return err
			}
			queue, err := conn.shell.PendingQueue(role, &cli.LineConfirmer{In: app.Stdin, Out: app.Stderr})
			if err != nil {
				return cli.Internal("%w", err)
			}
			return emitQueue(app, conn, queue, params.JSONOutput, "No pending outpasses.")
		},
	}
}

type outpassHistoryParams struct {
	clientFlags
	cli.JSONOutput
	Status string `json:"status" flag:"status,s" desc:"only outpasses in this status (pending, staff-approved, warden-approved, approved, rejected)"`
}

func outpassHistoryCommand(app *App) *cli.Command {
	var params outpassHistoryParams

	return &cli.Command{
		Name:    "history",
		Summary: "List every outpass visible to your role",
		Description: `List all outpasses the logged-in role can see: a student's own
requests, or the full list for wardens, watchmen, year incharges and
admins. Staff see only the pending list.`,
		Examples: []cli.Example{
			{
				Description: "Approved outpasses at the gate",
				Command:     "outpass outpass history --status approved",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("history", &params) },
		Run: func(args []string) error {
			conn, err := app.connect(params.clientFlags, "outpass/history")
			if err != nil {
				return err
			}
			defer conn.Close()

			role, err := conn.role()
			if err != nil {
				return err
			}
			queue, err := conn.shell.HistoryQueue(role)
			if err != nil {
				return cli.Internal("%w", err)
			}
			if err := queue.Refresh(conn.ctx()); err != nil {
				return cli.FromError(err)
			}
			records := queue.Items()
			if params.Status != "" {
				records = filterStatus(records, outpass.Status(params.Status))
			}
			if done, err := params.EmitJSON(app.Stdout, records); done {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(app.Stdout, "No outpasses found.")
				return nil
			}
			return writeOutpassTable(app.Stdout, records, app.Color)
		},
	}
}

func filterStatus(records []outpass.Request, status outpass.Status) []outpass.Request {
	var filtered []outpass.Request
	for _, record := range records {
		if record.Status == status {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

func emitQueue(app *App, conn *connection, queue *outpass.Queue, output cli.JSONOutput, empty string) error {
	if err := queue.Refresh(conn.ctx()); err != nil {
		return cli.FromError(err)
	}
	records := queue.Items()
	if done, err := output.EmitJSON(app.Stdout, records); done {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(app.Stdout, empty)
		return nil
	}
	return writeOutpassTable(app.Stdout, records, app.Color)
}

func writeOutpassTable(w io.Writer, records []outpass.Request, color bool) error {
	writer := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "ID\tSTUDENT\tTYPE\tWINDOW\tREASON\tSTATUS\n")
	for _, record := range records {
		student := record.Student.Name
		if record.Student.RegisterNumber != "" {
			student += " (" + record.Student.RegisterNumber + ")"
		}
		kind := string(record.Type)
		if record.Emergency() {
			kind = "EMERGENCY"
		}
		status := record.Status.Label()
		if color {
			status = tui.DefaultTheme.StatusBadge(record.Status)
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
			record.ID, student, kind, record.Window(), tui.Truncate(record.Reason, 40), status)
	}
	return writer.Flush()
}

type outpassNewParams struct {
	clientFlags
	Reason   string `json:"reason"   flag:"reason"    desc:"reason for the leave"`
	Type     string `json:"type"     flag:"type,t"    desc:"regular, emergency or medical" default:"regular"`
	From     string `json:"from"     flag:"from"      desc:"first day of leave (YYYY-MM-DD)"`
	To       string `json:"to"       flag:"to"        desc:"last day of leave (YYYY-MM-DD)"`
	FromTime string `json:"fromTime" flag:"from-time" desc:"leaving time (HH:MM)"`
	ToTime   string `json:"toTime"   flag:"to-time"   desc:"return time (HH:MM)"`
}

func outpassNewCommand(app *App) *cli.Command {
	var params outpassNewParams

	return &cli.Command{
		Name:    "new",
		Summary: "Request a new outpass (students)",
		Description: `File an outpass request. The student profile must be complete first:
run 'outpass profile check' to see what is missing.`,
		Usage: "outpass outpass new --reason TEXT --from DATE --to DATE [flags]",
		Examples: []cli.Example{
			{
				Description: "A weekend home visit",
				Command:     "outpass outpass new --reason 'Home visit' --from 2026-10-24 --to 2026-10-25",
			},
			{
				Description: "An emergency leave with times",
				Command:     "outpass outpass new -t emergency --reason 'Family emergency' --from 2026-10-17 --from-time 16:00 --to 2026-10-18 --to-time 20:00",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("new", &params) },
		Run: func(args []string) error {
			request := outpass.NewRequest{
				Reason:   params.Reason,
				Type:     outpass.Type(params.Type),
				FromDate: params.From,
				ToDate:   params.To,
				FromTime: params.FromTime,
				ToTime:   params.ToTime,
			}.Normalize()
			if err := request.Validate(); err != nil {
				return cli.Validation("%w", err)
			}

			conn, err := app.connect(params.clientFlags, "outpass/new")
			if err != nil {
				return err
			}
			defer conn.Close()

			if _, err := conn.requireRole("outpass new", session.Student); err != nil {
				return err
			}
			if err := conn.shell.SubmitOutpass(conn.ctx(), request); err != nil {
				return cli.FromError(err)
			}
			conn.logger.Info("outpass submitted", "type", request.Type, "from", request.FromDate, "to", request.ToDate)
			return nil
		},
	}
}

type outpassActParams struct {
	clientFlags
	Yes bool `json:"-" flag:"yes,y" desc:"do not ask for confirmation"`
}

func outpassActCommand(app *App, action outpass.Action) *cli.Command {
	var params outpassActParams
	name := string(action)

	return &cli.Command{
		Name:    name,
		Summary: fmt.Sprintf("%s pending outpasses", titleCase(name)),
		Description: fmt.Sprintf(`%s one or more outpasses from your pending list. Each id is
confirmed before the call is made; the pending list is fetched again
after every successful call.`, titleCase(name)),
		Usage: fmt.Sprintf("outpass outpass %s <id>... [flags]", name),
		Examples: []cli.Example{
			{
				Description: fmt.Sprintf("%s without a prompt", titleCase(name)),
				Command:     fmt.Sprintf("outpass outpass %s --yes 6711f0c2a9", name),
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams(name, &params) },
		Run: func(args []string) error {
			if len(args) == 0 {
				return cli.Validation("at least one outpass id is required").
					WithHint("Run 'outpass outpass pending' to list ids.")
			}

			conn, err := app.connect(params.clientFlags, "outpass/"+name)
			if err != nil {
				return err
			}
			defer conn.Close()

			role, err := conn.requireRole("outpass "+name, session.Staff, session.Warden, session.YearIncharge)
			if err != nil {
				return err
			}
			queue, err := conn.shell.PendingQueue(role, &cli.LineConfirmer{
				In:        app.Stdin,
				Out:       app.Stderr,
				AssumeYes: params.Yes,
			})
			if err != nil {
				return cli.Internal("%w", err)
			}
			defer queue.Detach()
			if err := queue.Refresh(conn.ctx()); err != nil {
				return cli.FromError(err)
			}

			for _, id := range args {
				err := queue.Act(conn.ctx(), id, action)
				if errors.Is(err, outpass.ErrDeclined) {
					fmt.Fprintf(app.Stderr, "Skipped %s.\n", id)
					continue
				}
				if err != nil {
					return cli.FromError(err)
				}
			}
			return nil
		},
	}
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	return string(word[0]-'a'+'A') + word[1:]
}
