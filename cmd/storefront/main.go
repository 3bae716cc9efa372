// cmd/storefront/main.go
package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	appcfg "storefront/internal/infra/config"
	"storefront/internal/platform/di"
)

type CLI struct {
	APIURL  string `name:"api-url" help:"Storefront API base URL (overrides STOREFRONT_API_BASE_URL)." placeholder:"URL"`
	Store   string `name:"store" help:"Credential store backend (keyring, file, memory)." placeholder:"BACKEND"`
	Verbose bool   `short:"v" help:"Log to stderr as well as the log file."`

	Login    loginCmd    `cmd:"" help:"Sign in and open an authenticated session."`
	Register registerCmd `cmd:"" help:"Create an account and sign in."`
	Guest    guestCmd    `cmd:"" help:"Continue as guest (catalog only)."`
	Logout   logoutCmd   `cmd:"" help:"Sign out and clear stored credentials."`
	Status   statusCmd   `cmd:"" help:"Show the current session."`
	Groups   groupsCmd   `cmd:"" help:"List catalog groups."`
	Products productsCmd `cmd:"" help:"List products."`
	Cart     cartCmd     `cmd:"" help:"Show or change the cart."`
	Profile  profileCmd  `cmd:"" help:"Show or edit the user profile."`
}

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout

func main() {
	// .env first so env-backed flags see it
	envFile := os.Getenv("STOREFRONT_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[boot] WARN: could not load %s: %v", envFile, err)
	}

	var cli CLI
	app := createKongApplication(&cli)
	kctx, err := app.Parse(os.Args[1:])
	app.FatalIfErrorf(err)

	cfg := appcfg.Load()
	if v := strings.TrimRight(strings.TrimSpace(cli.APIURL), "/"); v != "" {
		cfg.APIBaseURL = v
	}
	if cli.Store != "" {
		cfg.CredentialStore = cli.Store
	}
	closeLog := configureLog(cfg.LogFile, cli.Verbose)
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cont, err := di.NewContainer(ctx, cfg)
	kctx.FatalIfErrorf(err)
	defer cont.Close()

	st := cont.Session.Initialize(ctx)
	log.Printf("[boot] session=%s", st.Status())

	kctx.BindTo(ctx, (*context.Context)(nil))
	kctx.Bind(cont)
	kctx.FatalIfErrorf(kctx.Run())
}

func createKongApplication(cli any) *kong.Kong {
	return kong.Must(cli,
		kong.Name("storefront"),
		kong.Description("Storefront client: session, catalog and cart."),
		kong.ShortUsageOnError(),
		kong.HelpOptions{Compact: true, WrapUpperBound: 80},
	)
}

// configureLog sends log output to the log file (when set) and, with verbose,
// to stderr too. Without either, logging is discarded so command output stays clean.
func configureLog(path string, verbose bool) func() {
	var ws []io.Writer
	if verbose {
		ws = append(ws, os.Stderr)
	}
	var f *os.File
	if p := strings.TrimSpace(path); p != "" {
		var err error
		f, err = os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			log.Printf("[boot] WARN: could not open %s: %v", p, err)
		} else {
			ws = append(ws, f)
		}
	}
	switch len(ws) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(ws[0])
	default:
		log.SetOutput(io.MultiWriter(ws...))
	}
	return func() {
		if f != nil {
			_ = f.Close()
		}
	}
}
