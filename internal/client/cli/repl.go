package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// commander is the command surface the REPL dispatches to.
// The real App satisfies it; tests provide a lightweight stub.
type commander interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	List(ctx context.Context) error
	Archived(ctx context.Context, clear bool) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Archive(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Swipe(ctx context.Context, id, dx string) error
	Search(ctx context.Context, q string) error
	Reminders(ctx context.Context, clear bool) error

	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	Passwd(ctx context.Context) error
	Theme(ctx context.Context, name string) error
	Avatar(ctx context.Context, path string) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: (l)ist, archived [clear], add, edit <id>, archive <id>, restore <id>, " +
		"delete <id>, swipe <id> <dx>, search <text>, reminders [clear], profile, editprofile, " +
		"passwd, theme <light|dark|blue|green>, avatar <file>, logout, exit"
)

// runREPL reads commands line by line and dispatches them to a.
//
// The prompt shows the current status (from statusFn). Commands other than
// help, register, login and exit require a session. Handler errors are
// printed and the loop continues; it ends on EOF or "exit"/"quit".
func runREPL(ctx context.Context, a commander, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("taskly %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if exit := dispatch(ctx, a, cmd, args); exit {
			printlnFn("Bye!")
			return
		}
	}
}

func dispatch(ctx context.Context, a commander, cmd string, args []string) (exit bool) {
	arg := func(usage string) (string, bool) {
		if len(args) == 0 {
			printlnFn("Usage:", usage)
			return "", false
		}
		return args[0], true
	}

	var err error
	switch cmd {
	case "exit", "quit":
		return true

	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return false

	case "register":
		err = a.Register(ctx)
	case "login":
		err = a.Login(ctx)

	default:
		if !a.isLoggedIn() {
			if isKnown(cmd) {
				printlnFn("Please login first")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			return false
		}
		err = dispatchLoggedIn(ctx, a, cmd, args, arg)
	}

	if err != nil {
		printlnFn("Error:", userMessage(err))
	}
	return false
}

func dispatchLoggedIn(ctx context.Context, a commander, cmd string, args []string,
	arg func(usage string) (string, bool)) error {

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "l", "list":
		return a.List(ctx)
	case "archived":
		return a.Archived(ctx, len(args) > 0 && args[0] == "clear")
	case "add":
		return a.Add(ctx)
	case "edit":
		if id, ok := arg("edit <id>"); ok {
			return a.Edit(ctx, id)
		}
	case "archive":
		if id, ok := arg("archive <id>"); ok {
			return a.Archive(ctx, id)
		}
	case "restore":
		if id, ok := arg("restore <id>"); ok {
			return a.Restore(ctx, id)
		}
	case "delete":
		if id, ok := arg("delete <id>"); ok {
			return a.Delete(ctx, id)
		}
	case "swipe":
		if len(args) < 2 {
			printlnFn("Usage: swipe <id> <dx>")
			return nil
		}
		return a.Swipe(ctx, args[0], args[1])
	case "search":
		return a.Search(ctx, strings.Join(args, " "))
	case "reminders":
		return a.Reminders(ctx, len(args) > 0 && args[0] == "clear")
	case "profile":
		return a.Profile(ctx)
	case "editprofile":
		return a.EditProfile(ctx)
	case "passwd":
		return a.Passwd(ctx)
	case "theme":
		if name, ok := arg("theme <light|dark|blue|green>"); ok {
			return a.Theme(ctx, name)
		}
	case "avatar":
		if path, ok := arg("avatar <file>"); ok {
			return a.Avatar(ctx, path)
		}
	default:
		printlnFn("Unknown command:", cmd)
	}
	return nil
}

var knownCommands = map[string]bool{
	"logout": true, "l": true, "list": true, "archived": true, "add": true, "edit": true,
	"archive": true, "restore": true, "delete": true, "swipe": true, "search": true,
	"reminders": true, "profile": true, "editprofile": true, "passwd": true, "theme": true,
	"avatar": true,
}

func isKnown(cmd string) bool { return knownCommands[cmd] }
