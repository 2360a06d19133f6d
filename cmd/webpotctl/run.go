package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/polkiloo/webpot/internal/client"
	"github.com/polkiloo/webpot/internal/logger"
)

const (
	defaultEndpoint = "http://localhost:8080/exec"
	defaultLogLevel = "warn"

	exitOK    = 0
	exitErr   = 1
	exitUsage = 2
)

type settings struct {
	endpoint string
	state    string
	payee    string
	logLevel string
}

type cli struct {
	app *client.App
	in  *bufio.Scanner
	out io.Writer
	log *slog.Logger
}

type command struct {
	usage string
	run   func(ctx context.Context, c *cli, args []string) error
}

var errUsage = errors.New("usage")

func commands() map[string]command {
	return map[string]command{
		"login":         {usage: "sign in with email and password", run: cmdLogin},
		"verify-otp":    {usage: "finish a login with the emailed code", run: cmdVerifyOTP},
		"register":      {usage: "create an account", run: cmdRegister},
		"reset":         {usage: "request a password reset code", run: cmdReset},
		"reset-confirm": {usage: "set a new password with the reset code", run: cmdResetConfirm},
		"logout":        {usage: "forget the stored session", run: cmdLogout},
		"whoami":        {usage: "show the signed-in user", run: cmdWhoami},
		"quote":         {usage: "list tier prices and advances", run: cmdQuote},
		"order":         {usage: "place an order and pay the advance", run: cmdOrder},
		"dashboard":     {usage: "show your orders and balances", run: cmdDashboard},
		"pay":           {usage: "pay the balance of an order", run: cmdPay},
		"review":        {usage: "leave a review", run: cmdReview},
		"reviews":       {usage: "show published reviews", run: cmdReviews},
		"contact":       {usage: "send a message to the studio", run: cmdContact},
		"admin-login":   {usage: "sign in to the console", run: cmdAdminLogin},
		"admin-orders":  {usage: "list all orders", run: cmdAdminOrders},
		"admin-users":   {usage: "list all users", run: cmdAdminUsers},
		"admin-reviews": {usage: "list all reviews", run: cmdAdminReviews},
		"approve":       {usage: "activate an order or publish a review", run: cmdApprove},
		"ban":           {usage: "block a user", run: cmdBan},
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, lookup func(string) (string, bool)) int {
	if err := loadEnvFile(".env"); err != nil {
		fmt.Fprintln(stderr, err)
		return exitErr
	}

	cfg, rest, err := loadSettings(args, lookup)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if len(rest) == 0 {
		printUsage(stderr)
		return exitUsage
	}

	cmd, ok := commands()[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		printUsage(stderr)
		return exitUsage
	}

	log := logger.NewTool(stderr, "webpotctl", cfg.logLevel)
	app, err := client.New(client.Options{
		Endpoint: cfg.endpoint,
		Store:    client.NewFileKV(cfg.state),
		Logger:   log,
		Payee:    cfg.payee,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitErr
	}
	defer app.DiscardPending()

	c := &cli{app: app, in: bufio.NewScanner(stdin), out: stdout, log: log}
	if err := cmd.run(ctx, c, rest[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return exitUsage
		}
		fmt.Fprintln(stderr, describe(err))
		return exitErr
	}
	return exitOK
}

func loadSettings(args []string, lookup func(string) (string, bool)) (settings, []string, error) {
	cfg := settings{
		endpoint: getString(lookup, "WEBPOT_ENDPOINT", defaultEndpoint),
		state:    getString(lookup, "WEBPOT_STATE", defaultStatePath()),
		payee:    getString(lookup, "WEBPOT_UPI_ID", client.DefaultPayee),
		logLevel: getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	fs := flag.NewFlagSet("webpotctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.endpoint, "endpoint", cfg.endpoint, "Action endpoint URL")
	fs.StringVar(&cfg.state, "state", cfg.state, "Session state file")
	fs.StringVar(&cfg.payee, "upi", cfg.payee, "UPI id receiving payments")
	fs.StringVar(&cfg.logLevel, "log-level", cfg.logLevel, "Log level: debug, info, warn or error")

	if err := fs.Parse(args); err != nil {
		return settings{}, nil, fmt.Errorf("parse flags: %w", err)
	}
	return cfg, fs.Args(), nil
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "webpot", "session.json")
}

func getString(lookup func(string) (string, bool), key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: webpotctl [-endpoint url] [-state file] <command> [flags]")
	fmt.Fprintln(w, "commands:")
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-14s %s\n", name, cmds[name].usage)
	}
}

// describe turns client errors into one-line messages for the terminal.
func describe(err error) string {
	var (
		verr *client.ValidationError
		serr *client.StatusError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, client.ErrLoginRequired):
		return "please sign in first"
	case errors.Is(err, client.ErrNetwork):
		return client.ErrNetwork.Error()
	case errors.As(err, &serr) && serr.Message != "":
		return serr.Message
	default:
		return err.Error()
	}
}

// newFlags builds subcommand flag set printing help to the command output.
func (c *cli) newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.out)
	return fs
}

// ask returns value or prompts for it on stdin.
func (c *cli) ask(value, label string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	fmt.Fprintf(c.out, "%s: ", label)
	if !c.in.Scan() {
		return ""
	}
	return strings.TrimSpace(c.in.Text())
}
