// Command pumplog is a CLI client for the training service: log in, keep
// a session draft, validate and submit it, and browse the session
// history. All data lives on the service; only the auth token and the
// draft being edited are stored locally.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/claude/pumplog/internal/api"
	"github.com/claude/pumplog/internal/config"
	"github.com/claude/pumplog/internal/state"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const usage = `Usage: pumplog [-config path] <command> [flags]

Auth:
  register         -email -password        create an account and log in
  login            -email -password        log in
  logout                                   discard the stored token
  forgot-password  -email                  request a password reset
  reset-password   -token -password        complete a password reset
  change-password  -old -new               change the current password

Sessions:
  list   [-from -to -day -exercise -goal]  list sessions, filtered
  show   <id>                              print one session
  delete <id>                              delete a session

Draft (the session being edited):
  draft new | edit <id> | import -file | set | add-exercise |
  set-exercise | remove-exercise | add-set | set-set | remove-set |
  show | validate | submit | discard

Other:
  mcp                                      serve MCP over stdio
`

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to config file")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("pumplog", Version)
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	a, err := newApp(*configPath, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.close()

	if err := a.run(flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app wires the config, local state, and API client for one invocation.
type app struct {
	cfg    *config.Config
	st     *state.DB
	client *api.Client
	log    *slog.Logger
	ts     *tsnet.Server
}

func newApp(configPath string, log *slog.Logger) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	st, err := state.Open(filepath.Dir(configPath))
	if err != nil {
		return nil, fmt.Errorf("opening state: %w", err)
	}

	a := &app{cfg: cfg, st: st, log: log}

	httpClient := &http.Client{Timeout: cfg.Server.Timeout()}
	if cfg.Tailscale.Enabled {
		a.ts = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := a.ts.Start(); err != nil {
			st.Close()
			return nil, fmt.Errorf("tsnet start: %w", err)
		}
		httpClient = a.ts.HTTPClient()
		httpClient.Timeout = cfg.Server.Timeout()
	}

	// Token absence is the logged-out state, not an error.
	token, err := st.LoadToken(cfg.Server.URL)
	if err != nil && !errors.Is(err, state.ErrNoToken) {
		st.Close()
		return nil, fmt.Errorf("loading token: %w", err)
	}

	a.client = api.NewClient(cfg.Server.URL,
		api.WithHTTPClient(httpClient),
		api.WithToken(token),
	)
	return a, nil
}

func (a *app) close() {
	if a.ts != nil {
		a.ts.Close()
	}
	a.st.Close()
}

// requireAuth is the CLI's stand-in for the web app's redirect to the
// login page on missing token.
func (a *app) requireAuth() error {
	if a.client.Token() == "" {
		return fmt.Errorf("not logged in: run `pumplog login` first")
	}
	return nil
}

func (a *app) run(args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return a.cmdRegister(rest)
	case "login":
		return a.cmdLogin(rest)
	case "logout":
		return a.cmdLogout()
	case "forgot-password":
		return a.cmdForgotPassword(rest)
	case "reset-password":
		return a.cmdResetPassword(rest)
	case "change-password":
		return a.cmdChangePassword(rest)
	case "list":
		return a.cmdList(rest)
	case "show":
		return a.cmdShow(rest)
	case "delete":
		return a.cmdDelete(rest)
	case "draft":
		return a.cmdDraft(rest)
	case "mcp":
		return a.cmdMCP()
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}
