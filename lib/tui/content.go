// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/bureau-foundation/outpass/lib/outpass"
	"github.com/bureau-foundation/outpass/lib/profile"
	"github.com/bureau-foundation/outpass/lib/roster"
	"github.com/bureau-foundation/outpass/lib/session"
	"github.com/bureau-foundation/outpass/lib/shell"
	"github.com/bureau-foundation/outpass/lib/workspace"
	"github.com/bureau-foundation/outpass/portal"
)

// row is one selectable line of the content pane.
type row struct {
	// Key identifies the row to a detail screen (a subject id, a staff
	// member's id) or to an action (an outpass id).
	Key string

	// Text is what a search matches against.
	Text string

	// Columns are the display cells.
	Columns []string

	// Record is set on outpass rows.
	Record *outpass.Request
}

// content is everything the content pane shows for one screen.
type content struct {
	Screen workspace.Screen
	Title  string

	// Body is a text block shown above the rows.
	Body string
	Rows []row

	// Empty replaces an empty row list.
	Empty string

	// Queue backs outpass screens; Act goes through it.
	Queue *outpass.Queue

	// Detail is the screen Open enters for the selected row.
	Detail workspace.Screen
}

// pendingScreens list outpasses awaiting the role's sign-off.
var pendingScreens = []workspace.Screen{
	workspace.StaffPassApproval,
	workspace.WardenPendingOutpass,
	workspace.YearInchargePendingOutpass,
}

// historyScreens list every outpass the role can see.
var historyScreens = []workspace.Screen{
	workspace.StudentOutpass,
	workspace.WardenOutpassList,
	workspace.WatchmanOutpassList,
	workspace.YearInchargeOutpassList,
	workspace.AdminOutpasses,
}

var studentListScreens = []workspace.Screen{
	workspace.StaffStudentDetails,
	workspace.WardenStudentView,
	workspace.WatchmanStudentView,
	workspace.YearInchargeStudentView,
	workspace.AdminManageStudents,
}

var managedScreens = map[workspace.Screen]portal.ManagedKind{
	workspace.AdminManageStaff:        portal.ManagedStaff,
	workspace.AdminManageWarden:       portal.ManagedWardens,
	workspace.AdminManageYearIncharge: portal.ManagedYearIncharge,
	workspace.AdminManageSecurity:     portal.ManagedSecurity,
	workspace.AdminManageBus:          portal.ManagedBus,
}

// cliHints name the command that covers a screen the viewer only
// describes.
var cliHints = map[workspace.Screen]string{
	workspace.AuthWelcome:              "Log in with 'outpass login --role ROLE --email EMAIL', then start the viewer again.",
	workspace.AuthLogin:                "outpass login --role student --email EMAIL",
	workspace.AuthWardenLogin:          "outpass login --role warden --email EMAIL",
	workspace.AuthWatchmanLogin:        "outpass login --role watchman --email EMAIL",
	workspace.AuthYearInchargeLogin:    "outpass login --role year_incharge --email EMAIL",
	workspace.AuthAdminLogin:           "outpass login --role admin --email EMAIL",
	workspace.StudentNewOutpass:        "Request an outpass with 'outpass outpass new --reason TEXT --from DATE --to DATE'.",
	workspace.StaffStudentRegistration: "Register a student with 'outpass students register --file student.jsonc'.",
	workspace.AdminStudentRegistration: "Register a student with 'outpass students register --file student.jsonc'.",
}

// loadContent fetches the data of screen. detailKey is the row key the
// screen was opened from, for detail screens.
func loadContent(ctx context.Context, running *shell.Shell, screen workspace.Screen, detailKey string, width int) (content, error) {
	loaded := content{Screen: screen, Title: screenTitle(screen)}
	role, _ := screen.Workspace().Role()

	switch {
	case slices.Contains(pendingScreens, screen):
		queue, err := running.PendingQueue(role, outpass.ConfirmerFunc(confirmed))
		if err != nil {
			return loaded, err
		}
		return outpassContent(ctx, loaded, queue, "No pending outpasses.")

	case slices.Contains(historyScreens, screen):
		queue, err := running.HistoryQueue(role)
		if err != nil {
			return loaded, err
		}
		empty := "No outpasses found."
		if role == session.Student {
			empty = "You have not requested any outpass yet."
		}
		return outpassContent(ctx, loaded, queue, empty)

	case slices.Contains(studentListScreens, screen):
		students, err := running.Portal.Students(ctx, role)
		if err != nil {
			return loaded, err
		}
		for _, student := range students {
			registerNumber := student.Text(profile.FieldRegisterNumber)
			loaded.Rows = append(loaded.Rows, row{
				Key:     registerNumber,
				Text:    roster.Join(student.Name(), registerNumber, student.Text(profile.FieldDepartment)),
				Columns: []string{registerNumber, student.Name(), student.Text(profile.FieldDepartment), student.ResidenceType()},
			})
		}
		loaded.Empty = "No students found."
		return loaded, nil
	}

	if kind, ok := managedScreens[screen]; ok {
		records, err := running.Portal.ManagedList(ctx, kind)
		if err != nil {
			return loaded, err
		}
		for _, record := range records {
			title := record.Title()
			if title == "" {
				title = "N/A"
			}
			loaded.Rows = append(loaded.Rows, row{
				Key:     record.ID(),
				Text:    roster.Join(title, record.Subtitle()),
				Columns: []string{title, record.Subtitle()},
			})
		}
		loaded.Empty = fmt.Sprintf("No %s records.", kind)
		return loaded, nil
	}

	switch screen {
	case workspace.StudentDashboard:
		dashboard := running.LoadStudentDashboard(ctx)
		var body strings.Builder
		if dashboard.Profile.OK() {
			student := dashboard.Profile.Value
			fmt.Fprintf(&body, "Welcome, %s\n", student.Name())
			fmt.Fprintf(&body, "Profile %d%% complete\n", profile.Completion(student))
			if missing := profile.Missing(student); len(missing) > 0 {
				fmt.Fprintf(&body, "Missing: %s\n", fieldLabels(missing))
			}
		}
		if dashboard.Notices.OK() {
			for _, notice := range dashboard.Notices.Value {
				loaded.Rows = append(loaded.Rows, row{
					Key:     notice.ID,
					Text:    notice.Title,
					Columns: []string{notice.Title, notice.Author()},
				})
			}
		}
		loaded.Body = body.String()
		loaded.Empty = "No notices."
		if !dashboard.Profile.OK() && !dashboard.Notices.OK() {
			return loaded, dashboard.Profile.Err
		}
		return loaded, nil

	case workspace.AdminDashboard:
		dashboard := running.LoadAdminDashboard(ctx)
		if dashboard.Profile.OK() {
			loaded.Body = "Welcome, " + dashboard.Profile.Value.Name + "\n"
		}
		if dashboard.Stats.OK() {
			stats := dashboard.Stats.Value
			for _, name := range slices.Sorted(maps.Keys(stats)) {
				loaded.Rows = append(loaded.Rows, row{
					Key:     name,
					Text:    name,
					Columns: []string{name, fmt.Sprint(stats[name])},
				})
			}
		}
		if !dashboard.Profile.OK() && !dashboard.Stats.OK() {
			return loaded, dashboard.Stats.Err
		}
		return loaded, nil

	case workspace.StudentNotices, workspace.StaffNotices:
		notices, err := running.Portal.Notices(ctx, role)
		if err != nil {
			return loaded, err
		}
		var body strings.Builder
		for index, notice := range notices {
			if index > 0 {
				body.WriteString("\n")
			}
			fmt.Fprintf(&body, "%s\n%s\n\n", notice.Title, strings.TrimSpace(notice.Author()+"  "+notice.CreatedAt))
			body.WriteString(RenderMarkdownProfile(notice.Content, DefaultTheme, max(width, 20), termenv.ANSI256))
			body.WriteString("\n")
		}
		loaded.Body = body.String()
		if len(notices) == 0 {
			loaded.Body = "No notices."
		}
		return loaded, nil

	case workspace.StudentStaffs:
		members, err := running.Portal.StaffDirectory(ctx)
		if err != nil {
			return loaded, err
		}
		for _, member := range members {
			loaded.Rows = append(loaded.Rows, row{
				Key:     member.ID,
				Text:    roster.Join(member.Name, member.Department, member.Designation),
				Columns: []string{member.Name, member.Department, member.Designation},
			})
		}
		loaded.Empty = "No staff found."
		loaded.Detail = workspace.StudentStaffProfile
		return loaded, nil

	case workspace.StudentStaffProfile:
		members, err := running.Portal.StaffDirectory(ctx)
		if err != nil {
			return loaded, err
		}
		index := slices.IndexFunc(members, func(member portal.Member) bool { return member.ID == detailKey })
		if index < 0 {
			loaded.Body = "Staff member not found."
			return loaded, nil
		}
		loaded.Rows = memberRows(members[index])
		return loaded, nil

	case workspace.StudentSubjects:
		subjects, err := running.Portal.Subjects(ctx)
		if err != nil {
			return loaded, err
		}
		for _, subject := range subjects {
			staff := ""
			if subject.Staff != nil {
				staff = subject.Staff.Name
			}
			loaded.Rows = append(loaded.Rows, row{
				Key:     subject.ID,
				Text:    roster.Join(subject.Name, subject.Code, staff),
				Columns: []string{subject.Code, subject.Name, staff},
			})
		}
		loaded.Empty = "No subjects found."
		loaded.Detail = workspace.StudentSubjectDetails
		return loaded, nil

	case workspace.StudentSubjectDetails:
		if detailKey == "" {
			loaded.Body = "Open a subject from the subject list."
			return loaded, nil
		}
		files, err := running.Portal.SubjectFiles(ctx, detailKey)
		if err != nil {
			return loaded, err
		}
		for _, file := range files {
			loaded.Rows = append(loaded.Rows, row{
				Key:     file.ID,
				Text:    file.Filename,
				Columns: []string{file.Filename, file.URL},
			})
		}
		loaded.Empty = "No files for this subject."
		return loaded, nil

	case workspace.StudentProfile:
		student, err := running.LoadStudentProfile(ctx)
		if err != nil {
			return loaded, err
		}
		for _, field := range profile.Required(student) {
			value := student.Text(field)
			if !student.Filled(field) {
				value = "(missing)"
			}
			loaded.Rows = append(loaded.Rows, row{
				Key:     string(field),
				Text:    field.Label(),
				Columns: []string{field.Label(), value},
			})
		}
		loaded.Body = fmt.Sprintf("Profile %d%% complete\n", profile.Completion(student))
		return loaded, nil

	case workspace.StaffDashboard, workspace.StaffProfile,
		workspace.WardenDashboard, workspace.WardenProfile,
		workspace.WatchmanDashboard, workspace.WatchmanProfile,
		workspace.YearInchargeDashboard, workspace.YearInchargeProfile,
		workspace.AdminProfile:
		member, err := running.Portal.MemberProfile(ctx, role)
		if err != nil {
			return loaded, err
		}
		loaded.Body = "Welcome, " + member.Name + "\n"
		loaded.Rows = memberRows(member)
		return loaded, nil
	}

	if hint, ok := cliHints[screen]; ok {
		loaded.Body = hint
		return loaded, nil
	}
	loaded.Body = "Nothing to show on this screen."
	return loaded, nil
}

// confirmed approves every prompt: the viewer's modal has already asked
// before Act runs.
func confirmed(context.Context, outpass.Prompt) (bool, error) {
	return true, nil
}

func outpassContent(ctx context.Context, loaded content, queue *outpass.Queue, empty string) (content, error) {
	if err := queue.Refresh(ctx); err != nil {
		return loaded, err
	}
	loaded.Queue = queue
	loaded.Rows = outpassRows(queue.Items())
	loaded.Empty = empty
	return loaded, nil
}

func outpassRows(records []outpass.Request) []row {
	rows := make([]row, len(records))
	for index := range records {
		record := records[index]
		rows[index] = row{
			Key: record.ID,
			Text: roster.Join(record.Student.Name, record.Student.RegisterNumber,
				string(record.Type), record.Reason),
			Columns: []string{record.Student.Name, string(record.Type), record.Window(), record.Reason},
			Record:  &record,
		}
	}
	return rows
}

func memberRows(member portal.Member) []row {
	var rows []row
	add := func(label, value string) {
		if value != "" {
			rows = append(rows, row{Key: label, Text: label, Columns: []string{label, value}})
		}
	}
	add("Name", member.Name)
	add("Email", member.Email)
	add("Phone", member.Phone)
	add("Department", member.Department)
	add("Designation", member.Designation)
	add("Handling years", strings.Join(member.HandlingYear, ", "))
	add("Handling batches", strings.Join(member.HandlingBatch, ", "))
	return rows
}

func fieldLabels(fields []profile.Field) string {
	labels := make([]string, len(fields))
	for index, field := range fields {
		labels[index] = field.Label()
	}
	return strings.Join(labels, ", ")
}

// screenTitle turns a screen name into a heading: "PendingOutpass"
// becomes "Pending Outpass".
func screenTitle(screen workspace.Screen) string {
	name := screen.Name()
	var builder strings.Builder
	for index, character := range name {
		if index > 0 && character >= 'A' && character <= 'Z' {
			previous := name[index-1]
			if previous >= 'a' && previous <= 'z' {
				builder.WriteByte(' ')
			}
		}
		builder.WriteRune(character)
	}
	return builder.String()
}

// rowIndex parses a row key produced by strconv.Itoa.
func rowIndex(key string) int {
	index, err := strconv.Atoi(key)
	if err != nil {
		return -1
	}
	return index
}
