// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/outpass/cmd/outpass/cli"
	"github.com/bureau-foundation/outpass/lib/roster"
	"github.com/bureau-foundation/outpass/lib/session"
	"github.com/bureau-foundation/outpass/portal"
)

func adminCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "admin",
		Summary: "Administration (admins)",
		Description: `Institution-wide counts and management of staff, wardens, year
incharges, security and bus routes.`,
		Subcommands: []*cli.Command{
			adminDashboardCommand(app),
			{
				Name:    "manage",
				Summary: "List and delete managed records",
				Subcommands: []*cli.Command{
					manageListCommand(app),
					manageDeleteCommand(app),
				},
			},
		},
	}
}

// dashboardResult is the JSON form of 'admin dashboard'. Either half may
// fail on its own; its error is reported in place of its value.
type dashboardResult struct {
	Profile      *portal.Member `json:"profile,omitempty"`
	ProfileError string         `json:"profile_error,omitempty"`
	Stats        portal.Stats   `json:"stats,omitempty"`
	StatsError   string         `json:"stats_error,omitempty"`
}

type adminDashboardParams struct {
	clientFlags
	cli.JSONOutput
}

func adminDashboardCommand(app *App) *cli.Command {
	var params adminDashboardParams

	return &cli.Command{
		Name:    "dashboard",
		Summary: "Show the admin profile and institution counts",
		Description: `Fetch the admin profile and the dashboard counts together. A failure of
one does not hide the other; the command fails only when both do.`,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("dashboard", &params) },
		Run: func(args []string) error {
			conn, err := app.connect(params.clientFlags, "admin/dashboard")
			if err != nil {
				return err
			}
			defer conn.Close()

			if _, err := conn.requireRole("admin dashboard", session.Admin); err != nil {
				return err
			}
			dashboard := conn.shell.LoadAdminDashboard(conn.ctx())
			if !dashboard.Profile.OK() && !dashboard.Stats.OK() {
				return cli.FromError(dashboard.Stats.Err)
			}

			var result dashboardResult
			if dashboard.Profile.OK() {
				result.Profile = &dashboard.Profile.Value
			} else {
				result.ProfileError = portal.MessageOf(dashboard.Profile.Err)
			}
			if dashboard.Stats.OK() {
				result.Stats = dashboard.Stats.Value
			} else {
				result.StatsError = portal.MessageOf(dashboard.Stats.Err)
			}
			if done, err := params.EmitJSON(app.Stdout, result); done {
				return err
			}

			if result.Profile != nil {
				fmt.Fprintf(app.Stdout, "Welcome, %s\n\n", result.Profile.Name)
			} else {
				fmt.Fprintf(app.Stdout, "Profile unavailable: %s\n\n", result.ProfileError)
			}
			if result.StatsError != "" {
				fmt.Fprintf(app.Stdout, "Counts unavailable: %s\n", result.StatsError)
				return nil
			}
			writer := tabwriter.NewWriter(app.Stdout, 2, 0, 3, ' ', 0)
			for _, key := range slices.Sorted(maps.Keys(result.Stats)) {
				fmt.Fprintf(writer, "%s:\t%v\n", titleCase(key), result.Stats[key])
			}
			return writer.Flush()
		},
	}
}

func parseKind(value string) (portal.ManagedKind, error) {
	kind, err := portal.ParseManagedKind(value)
	if err == nil {
		return kind, nil
	}
	names := make([]string, 0, len(portal.ManagedKinds()))
	for _, candidate := range portal.ManagedKinds() {
		names = append(names, string(candidate))
	}
	if suggestion := cli.Suggest(value, names); suggestion != "" {
		return "", cli.Validation("unknown collection %q (did you mean %q?)", value, suggestion)
	}
	return "", cli.Validation("unknown collection %q (want one of %v)", value, names)
}

type manageListParams struct {
	clientFlags
	cli.JSONOutput
	Search string `json:"search" flag:"search,q" desc:"fuzzy filter on the displayed columns"`
}

func manageListCommand(app *App) *cli.Command {
	var params manageListParams

	return &cli.Command{
		Name:    "list",
		Summary: "List a managed collection",
		Description: `List one collection: staff, wardens, year-incharge, security or bus.
Records are shown as the service sent them; --json prints every field.`,
		Usage: "outpass admin manage list <collection> [flags]",
		Examples: []cli.Example{
			{
				Description: "List wardens",
				Command:     "outpass admin manage list wardens",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("exactly one collection is required (staff, wardens, year-incharge, security, bus)")
			}
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}

			conn, err := app.connect(params.clientFlags, "admin/manage/list")
			if err != nil {
				return err
			}
			defer conn.Close()

			if _, err := conn.requireRole("admin manage list", session.Admin); err != nil {
				return err
			}
			records, err := conn.shell.Portal.ManagedList(conn.ctx(), kind)
			if err != nil {
				return cli.FromError(err)
			}
			records = fuzzyFilter(params.Search, records, func(record portal.Record) string {
				return roster.Join(record.Title(), record.Subtitle())
			})
			if done, err := params.EmitJSON(app.Stdout, records); done {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintf(app.Stdout, "No %s records.\n", kind)
				return nil
			}
			writer := tabwriter.NewWriter(app.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(writer, "ID\tNAME\tDETAIL\n")
			for _, record := range records {
				title := record.Title()
				if title == "" {
					title = "N/A"
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\n", record.ID(), title, record.Subtitle())
			}
			return writer.Flush()
		},
	}
}

type manageDeleteParams struct {
	clientFlags
	Yes bool `json:"-" flag:"yes,y" desc:"do not ask for confirmation"`
}

func manageDeleteCommand(app *App) *cli.Command {
	var params manageDeleteParams

	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a managed record",
		Description: `Delete one record from a managed collection after confirmation. Bus
routes cannot be deleted from the client.`,
		Usage: "outpass admin manage delete <collection> <id> [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("delete", &params) },
		Run: func(args []string) error {
			if len(args) != 2 {
				return cli.Validation("a collection and a record id are required")
			}
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			if !kind.Deletable() {
				return cli.Forbidden("%s records cannot be deleted", kind)
			}
			id := args[1]

			conn, err := app.connect(params.clientFlags, "admin/manage/delete")
			if err != nil {
				return err
			}
			defer conn.Close()

			if _, err := conn.requireRole("admin manage delete", session.Admin); err != nil {
				return err
			}
			confirmer := &cli.LineConfirmer{In: app.Stdin, Out: app.Stderr, AssumeYes: params.Yes}
			confirmed, err := confirmer.Ask(conn.ctx(), fmt.Sprintf("Delete %s record %s", kind, id), "Are you sure?")
			if err != nil {
				return cli.Internal("%w", err)
			}
			if !confirmed {
				fmt.Fprintln(app.Stderr, "Cancelled.")
				return nil
			}
			if err := conn.shell.Portal.DeleteManaged(conn.ctx(), kind, id); err != nil {
				return cli.FromError(err)
			}
			conn.logger.Info("managed record deleted", "kind", kind, "id", id)
			fmt.Fprintln(app.Stdout, "Deleted successfully.")
			return nil
		},
	}
}
