// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/outpass/cmd/outpass/cli"
	"github.com/bureau-foundation/outpass/lib/profile"
	"github.com/bureau-foundation/outpass/lib/roster"
	"github.com/bureau-foundation/outpass/lib/session"
	"github.com/bureau-foundation/outpass/lib/tui"
	"github.com/bureau-foundation/outpass/portal"
)

// noticeWidth is the wrap width of rendered notice bodies.
const noticeWidth = 80

// fuzzyFilter keeps the rows whose text matches query, best match
// first. A blank query keeps every row in order.
func fuzzyFilter[T any](query string, rows []T, text func(T) string) []T {
	if strings.TrimSpace(query) == "" {
		return rows
	}
	entries := make([]roster.Entry, len(rows))
	for index, row := range rows {
		entries[index] = roster.Entry{Key: strconv.Itoa(index), Text: text(row)}
	}
	keys := roster.Keys(roster.NewMatcher().Search(query, entries))
	filtered := make([]T, 0, len(keys))
	for _, key := range keys {
		index, _ := strconv.Atoi(key)
		filtered = append(filtered, rows[index])
	}
	return filtered
}

type noticesParams struct {
	clientFlags
	cli.JSONOutput
	Limit int `json:"limit" flag:"limit,n" desc:"show at most this many notices (0 for all)"`
}

func noticesCommand(app *App) *cli.Command {
	var params noticesParams

	return &cli.Command{
		Name:    "notices",
		Summary: "Read the notice board",
		Description: `Print the notice board, newest first as the service orders it. Staff
read the staff board; every other role reads the student board. Notice
bodies are markdown and are rendered for the terminal.`,
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("notices", &params) },
		Run: func(args []string) error {
			conn, err := app.connect(params.clientFlags, "notices")
			if err != nil {
				return err
			}
			defer conn.Close()

			role, err := conn.role()
			if err != nil {
				return err
			}
			notices, err := conn.shell.Portal.Notices(conn.ctx(), role)
			if err != nil {
				return cli.FromError(err)
			}
			if params.Limit > 0 && len(notices) > params.Limit {
				notices = notices[:params.Limit]
			}
			if done, err := params.EmitJSON(app.Stdout, notices); done {
				return err
			}
			if len(notices) == 0 {
				fmt.Fprintln(app.Stdout, "No notices.")
				return nil
			}
			writeNotices(app.Stdout, notices, app.Color)
			return nil
		},
	}
}

func writeNotices(w io.Writer, notices []portal.Notice, color bool) {
	colorProfile := termenv.Ascii
	if color {
		colorProfile = termenv.ANSI256
	}
	for index, notice := range notices {
		if index > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, notice.Title)
		byline := notice.CreatedAt
		if author := notice.Author(); author != "" {
			byline = strings.TrimSpace(author + "  " + byline)
		}
		if byline != "" {
			fmt.Fprintln(w, byline)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, tui.RenderMarkdownProfile(notice.Content, tui.DefaultTheme, noticeWidth, colorProfile))
	}
}

func subjectsCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "subjects",
		Summary: "Browse your subjects and course files (students)",
		Description: `List the logged-in student's subjects and the files attached to each.
Requires a complete profile.`,
		Subcommands: []*cli.Command{
			subjectsListCommand(app),
			subjectsFilesCommand(app),
		},
	}
}

type subjectsListParams struct {
	clientFlags
	cli.JSONOutput
	Search string `json:"search" flag:"search,q" desc:"fuzzy filter on name, code and staff"`
}

func subjectsListCommand(app *App) *cli.Command {
	var params subjectsListParams

	return &cli.Command{
		Name:    "list",
		Summary: "List your subjects",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(args []string) error {
			conn, err := app.connect(params.clientFlags, "subjects/list")
			if err != nil {
				return err
			}
			defer conn.Close()

			if _, err := conn.requireRole("subjects list", session.Student); err != nil {
				return err
			}
			if err := conn.shell.CheckStudentAction(conn.ctx(), profile.ViewSubjects); err != nil {
				return cli.FromError(err)
			}
			subjects, err := conn.shell.Portal.Subjects(conn.ctx())
			if err != nil {
				return cli.FromError(err)
			}
			subjects = fuzzyFilter(params.Search, subjects, func(subject portal.Subject) string {
				return roster.Join(subject.Name, subject.Code, subjectStaff(subject))
			})
			if done, err := params.EmitJSON(app.Stdout, subjects); done {
				return err
			}
			if len(subjects) == 0 {
				fmt.Fprintln(app.Stdout, "No subjects found.")
				return nil
			}
			writer := tabwriter.NewWriter(app.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(writer, "ID\tCODE\tNAME\tSEMESTER\tSTAFF\n")
			for _, subject := range subjects {
				semester := ""
				if subject.Semester > 0 {
					semester = strconv.Itoa(subject.Semester)
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
					subject.ID, subject.Code, subject.Name, semester, subjectStaff(subject))
			}
			return writer.Flush()
		},
	}
}

func subjectStaff(subject portal.Subject) string {
	if subject.Staff == nil {
		return ""
	}
	return subject.Staff.Name
}

type subjectsFilesParams struct {
	clientFlags
	cli.JSONOutput
}

func subjectsFilesCommand(app *App) *cli.Command {
	var params subjectsFilesParams

	return &cli.Command{
		Name:        "files",
		Summary:     "List the files of a subject",
		Description: "List the course files attached to a subject, with absolute download URLs.",
		Usage:       "outpass subjects files <subject-id> [flags]",
		Flags:       func() *pflag.FlagSet { return cli.FlagsFromParams("files", &params) },
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("exactly one subject id is required").
					WithHint("Run 'outpass subjects list' to list ids.")
			}

			conn, err := app.connect(params.clientFlags, "subjects/files")
			if err != nil {
				return err
			}
			defer conn.Close()

			if _, err := conn.requireRole("subjects files", session.Student); err != nil {
				return err
			}
			if err := conn.shell.CheckStudentAction(conn.ctx(), profile.ViewSubjects); err != nil {
				return cli.FromError(err)
			}
			files, err := conn.shell.Portal.SubjectFiles(conn.ctx(), args[0])
			if err != nil {
				return cli.FromError(err)
			}
			if done, err := params.EmitJSON(app.Stdout, files); done {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(app.Stdout, "No files for this subject.")
				return nil
			}
			writer := tabwriter.NewWriter(app.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(writer, "FILE\tUPLOADED\tURL\n")
			for _, file := range files {
				fmt.Fprintf(writer, "%s\t%s\t%s\n", file.Filename, file.UploadedAt, file.URL)
			}
			return writer.Flush()
		},
	}
}

func staffCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "staff",
		Summary: "Locate teaching staff",
		Subcommands: []*cli.Command{
			staffListCommand(app),
		},
	}
}

type staffListParams struct {
	clientFlags
	cli.JSONOutput
	Search string `json:"search" flag:"search,q" desc:"fuzzy filter on name, department and designation"`
}

func staffListCommand(app *App) *cli.Command {
	var params staffListParams

	return &cli.Command{
		Name:    "list",
		Summary: "List the staff directory",
		Description: `List teaching staff with their department and contact details. Students
need a complete profile to locate staff.`,
		Examples: []cli.Example{
			{
				Description: "Find a staff member by partial name",
				Command:     "outpass staff list --search kumr",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(args []string) error {
			conn, err := app.connect(params.clientFlags, "staff/list")
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.shell.CheckStudentAction(conn.ctx(), profile.LocateStaff); err != nil {
				return cli.FromError(err)
			}
			members, err := conn.shell.Portal.StaffDirectory(conn.ctx())
			if err != nil {
				return cli.FromError(err)
			}
			members = fuzzyFilter(params.Search, members, func(member portal.Member) string {
				return roster.Join(member.Name, member.Department, member.Designation)
			})
			if done, err := params.EmitJSON(app.Stdout, members); done {
				return err
			}
			if len(members) == 0 {
				fmt.Fprintln(app.Stdout, "No staff found.")
				return nil
			}
			writer := tabwriter.NewWriter(app.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(writer, "NAME\tDEPARTMENT\tDESIGNATION\tEMAIL\tPHONE\n")
			for _, member := range members {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
					member.Name, member.Department, member.Designation, member.Email, member.Phone)
			}
			return writer.Flush()
		},
	}
}

func studentsCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "students",
		Summary: "List and register students",
		Subcommands: []*cli.Command{
			studentsListCommand(app),
			studentsRegisterCommand(app),
		},
	}
}

type studentsListParams struct {
	clientFlags
	cli.JSONOutput
	Search string `json:"search" flag:"search,q" desc:"fuzzy filter on name, register number, department and year"`
}

func studentsListCommand(app *App) *cli.Command {
	var params studentsListParams

	return &cli.Command{
		Name:        "list",
		Summary:     "List the students visible to your role",
		Description: "List students with their residence details. Not available to students.",
		Flags:       func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(args []string) error {
			conn, err := app.connect(params.clientFlags, "students/list")
			if err != nil {
				return err
			}
			defer conn.Close()

			role, err := conn.requireRole("students list",
				session.Staff, session.Warden, session.Watchman, session.YearIncharge, session.Admin)
			if err != nil {
				return err
			}
			students, err := conn.shell.Portal.Students(conn.ctx(), role)
			if err != nil {
				return cli.FromError(err)
			}
			students = fuzzyFilter(params.Search, students, func(student profile.Student) string {
				return roster.Join(
					student.Name(),
					student.Text(profile.FieldRegisterNumber),
					student.Text(profile.FieldDepartment),
					student.Text(profile.FieldYear))
			})
			if done, err := params.EmitJSON(app.Stdout, students); done {
				return err
			}
			if len(students) == 0 {
				fmt.Fprintln(app.Stdout, "No students found.")
				return nil
			}
			writer := tabwriter.NewWriter(app.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(writer, "REGISTER NO\tNAME\tDEPARTMENT\tYEAR\tRESIDENCE\tPROFILE\n")
			for _, student := range students {
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%d%%\n",
					student.Text(profile.FieldRegisterNumber),
					student.Name(),
					student.Text(profile.FieldDepartment),
					student.Text(profile.FieldYear),
					student.ResidenceType(),
					profile.Completion(student))
			}
			return writer.Flush()
		},
	}
}

type studentsRegisterParams struct {
	clientFlags
	File string `json:"-" flag:"file,f" desc:"JSON or JSONC object describing the student (- for stdin)"`
}

func studentsRegisterCommand(app *App) *cli.Command {
	var params studentsRegisterParams

	return &cli.Command{
		Name:    "register",
		Summary: "Register a new student (staff and admin)",
		Description: `Create a student account. Fields come from --file and key=value
arguments, which override the file.`,
		Usage: "outpass students register [--file FILE] [key=value...]",
		Examples: []cli.Example{
			{
				Description: "Register from a prepared file, overriding the year",
				Command:     "outpass students register --file student.jsonc year=2",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("register", &params) },
		Run: func(args []string) error {
			student, err := collectPayload(app, params.File, args)
			if err != nil {
				return err
			}

			conn, err := app.connect(params.clientFlags, "students/register")
			if err != nil {
				return err
			}
			defer conn.Close()

			role, err := conn.requireRole("students register", session.Staff, session.Admin)
			if err != nil {
				return err
			}
			conn.logger.Info("registering student", "fields", cli.DescribeKeys(student))
			if err := conn.shell.Portal.RegisterStudent(conn.ctx(), role, student); err != nil {
				return cli.FromError(err)
			}
			fmt.Fprintln(app.Stdout, "Student registered.")
			return nil
		},
	}
}
