package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/activationgate/internal/client/client"
	"github.com/dmitrijs2005/activationgate/internal/common"
	"github.com/dmitrijs2005/activationgate/internal/rpc"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errUsage = errors.New("usage")

// parseAccountRef reads "id:<uuid>" as an account ID and anything else as a
// username.
func parseAccountRef(s string) rpc.AccountRef {
	if id, ok := strings.CutPrefix(s, "id:"); ok {
		return rpc.AccountRef{UserID: id}
	}
	return rpc.AccountRef{Username: s}
}

// Login authenticates as args[0] (prompted when absent). A second argument
// is sent as the activation code, needed when the administrator account has
// never logged in before.
func (a *App) Login(ctx context.Context, args []string) error {
	var userName, code string
	if len(args) > 0 {
		userName = args[0]
	}
	if len(args) > 1 {
		code = args[1]
	}
	if userName == "" {
		var err error
		if userName, err = getSimpleText(a.reader, "Enter username", a.out); err != nil {
			return err
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.call(ctx)
	defer cancel()

	resp, err := a.client.Login(ctx, userName, string(password), code)
	if err != nil {
		return err
	}

	a.userName = userName
	a.admin = resp.Admin
	if resp.Activated {
		fmt.Fprintln(a.out, "Account activated.")
	}
	if !resp.Admin {
		fmt.Fprintln(a.out, "Warning: this account is not an administrator; admin commands will be refused.")
	}
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(context.Context) error {
	a.userName = ""
	a.admin = false
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := a.call(ctx)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}

func describe(state, code string) string {
	if state == rpc.StatePending {
		return fmt.Sprintf("%s (code %s)", state, code)
	}
	return state
}

// Get prints the activation state of args[0].
func (a *App) Get(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: get <username|id:UUID>", errUsage)
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	resp, err := a.client.GetActivationCode(ctx, parseAccountRef(args[0]))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s\n", resp.UserID, describe(resp.State, resp.Code))
	return nil
}

// Set overwrites the stored value of args[0] with args[1] verbatim.
func (a *App) Set(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: set <username|id:UUID> <code|active>", errUsage)
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	if err := a.client.SetActivationCode(ctx, parseAccountRef(args[0]), args[1]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved.")
	return nil
}

// Activate marks args[0] as activated.
func (a *App) Activate(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: activate <username|id:UUID>", errUsage)
	}
	return a.Set(ctx, []string{args[0], "active"})
}

// parseListArgs accepts, in any order: a sort column (login|state), a
// direction (asc|desc) and up to two integers (limit, then offset).
func parseListArgs(args []string) (rpc.ListAccountsRequest, error) {
	var req rpc.ListAccountsRequest
	var nums []int
	for _, arg := range args {
		switch strings.ToLower(arg) {
		case "login", "username", "state", "activation":
			req.SortBy = strings.ToLower(arg)
		case "asc":
			req.Desc = false
		case "desc":
			req.Desc = true
		default:
			n, err := strconv.Atoi(arg)
			if err != nil || n < 0 || len(nums) == 2 {
				return req, fmt.Errorf("%w: list [login|state] [asc|desc] [limit] [offset]", errUsage)
			}
			nums = append(nums, n)
		}
	}
	if len(nums) > 0 {
		req.Limit = nums[0]
	}
	if len(nums) > 1 {
		req.Offset = nums[1]
	}
	return req, nil
}

func (a *App) List(ctx context.Context, args []string) error {
	req, err := parseListArgs(args)
	if err != nil {
		return err
	}

	ctx, cancel := a.call(ctx)
	defer cancel()

	accounts, err := a.client.ListAccounts(ctx, req)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tADMIN\tACTIVATION")
	for _, acc := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", acc.UserID, acc.Username, acc.Email, acc.Admin, describe(acc.State, acc.Code))
	}
	return tw.Flush()
}

func printReport(a *App, what string, r *rpc.BulkResponse) {
	fmt.Fprintf(a.out, "%s: scanned %d, changed %d, batches %d\n", what, r.Scanned, r.Changed, r.Batches)
}

func (a *App) Backfill(ctx context.Context) error {
	r, err := a.client.InstallBackfill(ctx)
	if err != nil {
		return err
	}
	printReport(a, "Backfill", r)
	return nil
}

// Cleanup removes every stored activation code; it runs only with the
// literal argument "yes".
func (a *App) Cleanup(ctx context.Context, args []string) error {
	if len(args) != 1 || args[0] != "yes" {
		return fmt.Errorf("%w: cleanup yes (removes every activation code)", errUsage)
	}
	r, err := a.client.UninstallCleanup(ctx)
	if err != nil {
		return err
	}
	printReport(a, "Cleanup", r)
	return nil
}

// explain adds a hint for errors the operator can act on.
func explain(err error) string {
	switch {
	case errors.Is(err, client.ErrSessionExpired):
		return err.Error()
	case errors.Is(err, client.ErrUnauthorized):
		return err.Error() + " (run 'login' first)"
	case errors.Is(err, client.ErrForbidden):
		return err.Error() + " (log in with an administrator account)"
	default:
		return err.Error()
	}
}
