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

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	report(err error)
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Get(ctx context.Context, args []string) error
	Set(ctx context.Context, args []string) error
	Activate(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Backfill(ctx context.Context) error
	Cleanup(ctx context.Context, args []string) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF, on "exit"/"quit" or when ctx is done.
//
// Commands:
//
//	login [username] [code]   authenticate (password prompted without echo)
//	ping                      check the server
//	get <account>             show state and pending code
//	set <account> <value>     store value verbatim ("active" activates)
//	activate <account>        same as set <account> active
//	(l)ist [login|state] [asc|desc] [limit] [offset]
//	backfill                  mark accounts without a code as active
//	cleanup yes               delete every stored code
//	logout, help, exit | quit
//
// <account> is a username or id:<uuid>. Errors are reported and the loop
// continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("ag %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: get, set, activate, (l)ist, backfill, cleanup, ping, logout, exit")
			} else {
				printlnFn("Available commands: login, ping, exit")
			}

		case "login":
			cmdErr = a.Login(ctx, args)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "ping":
			cmdErr = a.Ping(ctx)

		case "get":
			cmdErr = a.Get(ctx, args)

		case "set":
			cmdErr = a.Set(ctx, args)

		case "activate":
			cmdErr = a.Activate(ctx, args)

		case "l", "list":
			cmdErr = a.List(ctx, args)

		case "backfill":
			cmdErr = a.Backfill(ctx)

		case "cleanup":
			cmdErr = a.Cleanup(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			a.report(cmdErr)
		}
	}
}
