package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"task-manager/internal/api"
	"task-manager/internal/config"
	"task-manager/internal/logging"
	"task-manager/internal/session"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// App represents the main CLI application
type App struct {
	api     api.API
	config  *config.Config
	tokens  *session.TokenFile
	logger  *slog.Logger
	in      *bufio.Reader
	stdin   io.Reader
	out     io.Writer
	closers []func() error
}

// AppOption customizes an App
type AppOption func(*App)

// WithIO replaces stdin and stdout
func WithIO(in io.Reader, out io.Writer) AppOption {
	return func(a *App) {
		a.stdin = in
		a.in = bufio.NewReader(in)
		a.out = out
	}
}

// WithLogger sets the logger handed to long-running commands such as serve
func WithLogger(logger *slog.Logger) AppOption {
	return func(a *App) { a.logger = logger }
}

// WithTokenFile sets where the session token is kept between invocations
func WithTokenFile(tokens *session.TokenFile) AppOption {
	return func(a *App) { a.tokens = tokens }
}

// OnClose registers fn to run when the app is closed, in reverse order
func OnClose(fn func() error) AppOption {
	return func(a *App) { a.closers = append(a.closers, fn) }
}

// NewApp creates a new CLI application instance with dependency injection
func NewApp(apiInstance api.API, cfg *config.Config, opts ...AppOption) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	app := &App{
		api:    apiInstance,
		config: cfg,
		logger: logging.Discard(),
		stdin:  os.Stdin,
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.tokens == nil {
		app.tokens = session.NewTokenFile(cfg.GetTokenPath())
	}
	return app
}

// Close releases everything registered with OnClose
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// prompt prints label and reads one line of input
func (a *App) prompt(label string) (string, error) {
	a.printf("%s", label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptSecret reads a line without echo when stdin is a terminal
func (a *App) promptSecret(label string) (string, error) {
	f, ok := a.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return a.prompt(label)
	}
	a.printf("%s", label)
	b, err := term.ReadPassword(int(f.Fd()))
	a.println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func (a *App) confirm(question string) (bool, error) {
	answer, err := a.prompt(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
