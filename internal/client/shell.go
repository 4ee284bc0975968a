package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/basetutor/internal/models"
)

const helpText = `Available commands:
  register | login | logout | whoami
  convert <value> <from> <to>
  history [limit] | clear | recent
  tutors | request <tutor> | requests
  accept <id> [topic...] | decline <id>
  sessions | complete <id> | cancel <id>
  help | exit`

// Shell is the interactive command loop. The logged-in user, if any, scopes
// history and tutoring commands.
type Shell struct {
	API  *Client
	In   *bufio.Scanner
	Out  io.Writer
	User *models.User
}

// NewShell returns a Shell reading commands from in.
func NewShell(api *Client, in io.Reader, out io.Writer) *Shell {
	return &Shell{API: api, In: bufio.NewScanner(in), Out: out}
}

// Run reads commands until "exit" or end of input.
func (s *Shell) Run(ctx context.Context) {
	for {
		fmt.Fprint(s.Out, "basetutor> ")
		if !s.In.Scan() {
			return
		}
		args := strings.Fields(s.In.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" {
			fmt.Fprintln(s.Out, "Bye")
			return
		}
		if err := s.Exec(ctx, args); err != nil {
			fmt.Fprintln(s.Out, "error:", err)
		}
	}
}

// Exec runs a single command.
func (s *Shell) Exec(ctx context.Context, args []string) error {
	switch args[0] {
	case "help":
		fmt.Fprintln(s.Out, helpText)
	case "register":
		c := PromptCredentials(s.In, s.Out, true)
		u, err := s.API.Register(ctx, c.Username, c.Email, c.Password, c.Role)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "Registered %s as %s\n", u.Username, u.Role)
	case "login":
		c := PromptCredentials(s.In, s.Out, false)
		u, err := s.API.Login(ctx, c.Username, c.Password)
		if err != nil {
			return err
		}
		s.User = &u
		fmt.Fprintf(s.Out, "Logged in as %s (%s)\n", u.Username, u.Role)
	case "logout":
		s.User = nil
		fmt.Fprintln(s.Out, "Logged out")
	case "whoami":
		if s.User == nil {
			fmt.Fprintln(s.Out, "anonymous")
		} else {
			fmt.Fprintf(s.Out, "%s (%s)\n", s.User.Username, s.User.Role)
		}
	case "convert":
		return s.convert(ctx, args[1:])
	case "recent":
		entries, err := s.API.Recent(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintln(s.Out, e)
		}
	case "tutors":
		tutors, err := s.API.Tutors(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.Out, strings.Join(tutors, "\n"))
	default:
		return s.execUser(ctx, args)
	}
	return nil
}

// execUser runs commands that need a logged-in user.
func (s *Shell) execUser(ctx context.Context, args []string) error {
	if s.User == nil {
		switch args[0] {
		case "history", "clear", "request", "requests", "accept", "decline", "sessions", "complete", "cancel":
			return errors.New("login required")
		}
		return fmt.Errorf("unknown command %q, type 'help' for a list of commands", args[0])
	}
	asTutor := s.User.Role == models.RoleTutor

	switch args[0] {
	case "history":
		limit := 0
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.New("usage: history [limit]")
			}
			limit = n
		}
		entries, err := s.API.History(ctx, s.User.Username, limit)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Fprintf(s.Out, "%s (%d) = %s (%d)\n", e.InputValue, e.InputBase, e.OutputValue, e.OutputBase)
		}
	case "clear":
		n, err := s.API.ClearHistory(ctx, s.User.Username)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.Out, "Removed %d entries\n", n)
	case "request":
		if len(args) < 2 {
			return errors.New("usage: request <tutor>")
		}
		tr, err := s.API.RequestTutor(ctx, s.User.Username, args[1])
		if err != nil {
			return err
		}
		return s.print(tr)
	case "requests":
		reqs, err := s.API.Requests(ctx, s.User.Username, asTutor)
		if err != nil {
			return err
		}
		return s.print(reqs)
	case "accept":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		sess, err := s.API.Accept(ctx, id, strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		return s.print(sess)
	case "decline":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		tr, err := s.API.Decline(ctx, id)
		if err != nil {
			return err
		}
		return s.print(tr)
	case "sessions":
		sessions, err := s.API.Sessions(ctx, s.User.Username, asTutor)
		if err != nil {
			return err
		}
		return s.print(sessions)
	case "complete", "cancel":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		next := models.SessionCompleted
		if args[0] == "cancel" {
			next = models.SessionCancelled
		}
		sess, err := s.API.FinishSession(ctx, id, next)
		if err != nil {
			return err
		}
		return s.print(sess)
	default:
		return fmt.Errorf("unknown command %q, type 'help' for a list of commands", args[0])
	}
	return nil
}

func (s *Shell) convert(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: convert <value> <from> <to>")
	}
	from, err1 := strconv.Atoi(args[1])
	to, err2 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil {
		return errors.New("usage: convert <value> <from> <to>")
	}

	username := ""
	if s.User != nil {
		username = s.User.Username
	}
	res, err := s.API.Convert(ctx, username, args[0], from, to)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.Out, res.Result)
	return nil
}

func (s *Shell) print(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(s.Out, string(b))
	return nil
}

func idArg(args []string) (int64, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("usage: %s <id>", args[0])
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("usage: %s <id>", args[0])
	}
	return id, nil
}
