// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthDir Contributors

// Package console provides the line-oriented front end to an auth.Directory,
// both on a local terminal and over TCP.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/authdir/authdir/internal/auth"
	"github.com/authdir/authdir/pkg/errutil"
)

// ErrQuit is returned by Run when the user asked to leave.
var ErrQuit = errors.New("quit")

// Console reads commands from one reader and writes replies to one writer.
// Each Console owns a single auth.Session.
type Console struct {
	dir     *auth.Directory
	session *auth.Session
	in      *bufio.Reader
	out     io.Writer
	logger  *slog.Logger
}

// New creates a Console with a no-op logger.
func New(dir *auth.Directory, in io.Reader, out io.Writer) (*Console, error) {
	return NewWithLogger(dir, in, out, slog.New(slog.DiscardHandler))
}

// NewWithLogger creates a Console that logs through logger.
func NewWithLogger(dir *auth.Directory, in io.Reader, out io.Writer, logger *slog.Logger) (*Console, error) {
	if dir == nil {
		return nil, oops.Errorf("directory is required")
	}
	if in == nil || out == nil {
		return nil, oops.Errorf("reader and writer are required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Console{
		dir:     dir,
		session: dir.NewSession(),
		in:      bufio.NewReader(in),
		out:     out,
		logger:  logger,
	}, nil
}

// Session returns the console's session handle.
func (c *Console) Session() *auth.Session {
	return c.session
}

// Run processes commands until the input ends, the user quits or ctx is
// cancelled. The session is logged out on return. End of input and quit
// both return nil.
func (c *Console) Run(ctx context.Context) error {
	defer c.session.Logout(context.WithoutCancel(ctx))

	c.send("Welcome to AuthDir. Type 'help' for a list of commands.")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := c.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return oops.Code("CONSOLE_READ_FAILED").Wrap(err)
		}

		err = c.Execute(ctx, line)
		switch {
		case errors.Is(err, ErrQuit):
			return nil
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
	}
}

// Execute runs one command line. Commands that need more input prompt for
// it on the console. Domain rejections are reported to the user, not
// returned; the error result is reserved for I/O failures and ErrQuit.
func (c *Console) Execute(ctx context.Context, line string) error {
	cmd, arg := parseCommand(line)

	switch cmd {
	case "":
		return nil
	case "register":
		return c.handleRegister(ctx)
	case "login":
		return c.handleLogin(ctx)
	case "logout":
		c.handleLogout(ctx)
	case "whoami":
		c.handleWhoami()
	case "profile":
		return c.handleProfile(ctx)
	case "users":
		c.handleUsers(ctx, arg)
	case "stats":
		c.handleStats(ctx)
	case "status":
		c.handleStatus()
	case "help":
		c.handleHelp()
	case "quit", "exit":
		c.send("Goodbye!")
		return ErrQuit
	default:
		c.send("Unknown command: " + cmd + ". Type 'help' for a list of commands.")
	}
	return nil
}

func (c *Console) handleRegister(ctx context.Context) error {
	fields, err := c.prompt("Name", "Email", "Password", "Role (ADMIN or MEMBER)")
	if err != nil {
		return err
	}

	user, err := c.dir.Register(ctx, fields[0], fields[1], fields[2], fields[3])
	if err != nil {
		c.report(ctx, "register", err)
		return nil
	}
	c.send(fmt.Sprintf("Registered %s as %s (ID %s).", user.Name, user.Role, user.ID))
	return nil
}

func (c *Console) handleLogin(ctx context.Context) error {
	fields, err := c.prompt("Email", "Password")
	if err != nil {
		return err
	}

	user, err := c.session.Login(ctx, fields[0], fields[1])
	if err != nil {
		c.report(ctx, "login", err)
		return nil
	}
	c.send("Welcome, " + user.Name + "!")
	return nil
}

func (c *Console) handleLogout(ctx context.Context) {
	if !c.session.IsLoggedIn() {
		c.send("You are not logged in.")
		return
	}
	c.session.Logout(ctx)
	c.send("Logged out.")
}

func (c *Console) handleWhoami() {
	user, ok := c.session.CurrentUser()
	if !ok {
		c.send("You are not logged in.")
		return
	}
	c.send("ID:      " + user.ID)
	c.send("Name:    " + user.Name)
	c.send("Email:   " + user.Email)
	c.send("Role:    " + user.Role.String())
	c.send("Area:    " + valueOrDash(user.Area))
	c.send("Contact: " + valueOrDash(user.Contact))
	c.send("Since:   " + user.CreatedAt.Format(time.DateTime))
}

func (c *Console) handleProfile(ctx context.Context) error {
	if !c.session.IsLoggedIn() {
		c.send(friendlyMessages[auth.CodeNotLoggedIn])
		return nil
	}

	fields, err := c.prompt("Area", "Contact")
	if err != nil {
		return err
	}

	if err := c.session.UpdateProfile(ctx, fields[0], fields[1]); err != nil {
		c.report(ctx, "profile", err)
		return nil
	}
	c.send("Profile updated.")
	return nil
}

func (c *Console) handleUsers(ctx context.Context, pattern string) {
	var matcher glob.Glob
	if pattern != "" {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			c.send("Invalid pattern: " + pattern)
			return
		}
		matcher = g
	}

	users, err := c.session.Users(ctx)
	if err != nil {
		c.report(ctx, "users", err)
		return
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	//nolint:errcheck // best-effort output to the console
	fmt.Fprintln(tw, "ID\tROLE\tNAME\tEMAIL\tAREA\tCONTACT")
	shown := 0
	for _, u := range users {
		if matcher != nil && !matcher.Match(strings.ToLower(u.Email)) {
			continue
		}
		//nolint:errcheck // best-effort output to the console
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.ID, u.Role, u.Name, u.Email, valueOrDash(u.Area), valueOrDash(u.Contact))
		shown++
	}
	if err := tw.Flush(); err != nil {
		c.logger.Debug("failed to write user table", "error", err)
	}
	c.send(fmt.Sprintf("%d of %d users shown.", shown, len(users)))
}

func (c *Console) handleStats(ctx context.Context) {
	stats, err := c.session.Stats(ctx)
	if err != nil {
		c.report(ctx, "stats", err)
		return
	}
	c.send(fmt.Sprintf("Users: %d (admins %d, members %d)", stats.Users, stats.Admins, stats.Members))
	c.send(fmt.Sprintf("Active sessions: %d", stats.ActiveSessions))
}

func (c *Console) handleStatus() {
	c.send("Admin registered: " + yesNo(c.dir.IsAdminRegistered()))
	c.send("Reserved admin email: " + c.dir.AdminEmail())
	if user, ok := c.session.CurrentUser(); ok {
		status := "Logged in as " + user.Email
		if c.session.IsCurrentUserAdmin() {
			status += " (administrator)"
		}
		c.send(status)
		return
	}
	c.send("Not logged in.")
}

func (c *Console) handleHelp() {
	c.send("Commands:")
	c.send("  register        create an account")
	c.send("  login           log in")
	c.send("  logout          log out")
	c.send("  whoami          show your account")
	c.send("  profile         set your area and contact number")
	c.send("  users [glob]    list users, optionally filtered by email (admin)")
	c.send("  stats           show directory statistics (admin)")
	c.send("  status          show login and admin status")
	c.send("  quit            leave")
}

// prompt asks for each field on its own line and returns the answers.
func (c *Console) prompt(labels ...string) ([]string, error) {
	answers := make([]string, 0, len(labels))
	for _, label := range labels {
		c.send(label + ":")
		line, err := c.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, err
			}
			return nil, oops.Code("CONSOLE_READ_FAILED").Wrap(err)
		}
		answers = append(answers, line)
	}
	return answers, nil
}

// report tells the user why an operation was refused and logs the detail.
func (c *Console) report(ctx context.Context, command string, err error) {
	c.send(Describe(err))
	errutil.Log(ctx, c.logger, slog.LevelDebug, "console command failed",
		oops.With("command", command).Wrap(err))
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) send(msg string) {
	if _, err := fmt.Fprintln(c.out, msg); err != nil {
		c.logger.Debug("failed to send message to console", "error", err)
	}
}

// parseCommand splits input into a lower-cased command and its argument.
func parseCommand(input string) (cmd, arg string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ""
	}

	parts := strings.SplitN(input, " ", 2)
	cmd = strings.ToLower(parts[0])
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}
	return cmd, arg
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
