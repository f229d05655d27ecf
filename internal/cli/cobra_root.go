package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"task-manager/internal/config"
	"task-manager/internal/errors"
	"task-manager/internal/logging"
)

// skipSessionAnnotation marks commands that run without restoring the saved session
const skipSessionAnnotation = "tm/skip-session"

// AppFactory builds the application for the resolved configuration
type AppFactory func(cfg *config.Config) (*App, error)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd     *cobra.Command
	factory AppFactory
	config  *config.Config
	app     *App
}

// NewRootCommand creates the root cobra command with global flags.
// The app is built by factory once flags and environment have been resolved.
func NewRootCommand(factory AppFactory) *RootCommand {
	root := &RootCommand{factory: factory}

	root.cmd = &cobra.Command{
		Use:   "tm",
		Short: "A command-line task manager",
		Long: `Task Manager (tm) keeps a personal list of tasks with due dates and priorities.

FEATURES:
  • Add, edit, complete and delete tasks with priorities and due dates
  • Search and filter by status and priority, sorted the way you like
  • Dashboard and analytics with completion rates and overdue counts
  • A rule-based assistant that answers questions about your tasks
  • A JSON HTTP API for the same data (tm serve)

EXAMPLES:
  tm register --email me@example.com       # Create an account and sign in
  tm add "Write report" --due tomorrow -p high
  tm list --status todo --sort priority    # Open tasks, most important first
  tm list report                           # Tasks mentioning "report"
  tm done 3f2a                             # Toggle completion by ID prefix
  tm ask "what is overdue?"                # Ask the assistant
  tm serve --addr 127.0.0.1:8080           # Serve the HTTP API

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > config.yaml > defaults

  Files:
    TM_CONFIG                              YAML config file (default: <db dir>/config.yaml)

  Database Configuration:
    TM_DB_DIR                              Data directory (default: ~/.tm)
    TM_DB_FILENAME                         Database filename (default: tm.db)
    TM_DB_QUERY_TIMEOUT                    Query timeout (default: 10s)
    TM_DB_WRITE_TIMEOUT                    Write timeout (default: 5s)

  Display Configuration:
    TM_DISPLAY_TIME_FORMAT                 Timestamp layout (default: 2006-01-02 15:04)
    TM_DISPLAY_DATE_FORMAT                 Due date layout (default: 2006-01-02)
    TM_DISPLAY_RECENT_LIMIT                Recent tasks on the dashboard (default: 5)

  Validation Configuration:
    TM_VALIDATION_TITLE_MIN                Min title length (default: 1)
    TM_VALIDATION_TITLE_MAX                Max title length (default: 255)
    TM_VALIDATION_DESCRIPTION_MAX          Max description length (default: 5000)
    TM_VALIDATION_PASSWORD_MIN             Min password length (default: 8)

  Application Configuration:
    TM_APP_TIMEOUT                         Command timeout (default: 60s)
    TM_APP_VERBOSE                         Enable verbose output (default: false)

  Server Configuration:
    TM_SERVER_ADDR                         Listen address (default: 127.0.0.1:8080)
    TM_AUTH_SESSION_TTL                    Session lifetime (default: 720h)
    TM_AUTH_TOKEN_CACHE_TTL                Token cache lifetime (default: 5m)
    TM_LOG_LEVEL                           debug, info, warn or error (default: info)
    TM_LOG_FORMAT                          text or json (default: text)

GETTING HELP:
  tm [command] --help                      # Get help for any specific command
  tm completion bash                       # Generate bash completion script`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.setup(cmd)
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command and releases the app afterwards
func (r *RootCommand) Execute() error {
	err := r.cmd.Execute()
	if r.app != nil {
		if cerr := r.app.Close(); err == nil {
			err = cerr
		}
		r.app = nil
	}
	return err
}

// SetArgs replaces the command line, for tests
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "YAML config file (overrides TM_CONFIG)")

	// Database configuration
	flags.String("db-dir", "", "Data directory (overrides TM_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides TM_DB_FILENAME)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides TM_DB_QUERY_TIMEOUT)")
	flags.Duration("db-write-timeout", 0, "Database write timeout (overrides TM_DB_WRITE_TIMEOUT)")

	// Display configuration
	flags.String("time-format", "", "Timestamp layout (overrides TM_DISPLAY_TIME_FORMAT)")
	flags.String("date-format", "", "Due date layout (overrides TM_DISPLAY_DATE_FORMAT)")
	flags.Int("recent-limit", 0, "Recent tasks on the dashboard (overrides TM_DISPLAY_RECENT_LIMIT)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Command timeout (overrides TM_APP_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "Enable verbose output (overrides TM_APP_VERBOSE)")

	// Logging configuration
	flags.String("log-level", "", "Log level (overrides TM_LOG_LEVEL)")
	flags.String("log-format", "", "Log format, text or json (overrides TM_LOG_FORMAT)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	r.cmd.AddGroup(
		&cobra.Group{ID: "account", Title: "Account Commands:"},
		&cobra.Group{ID: "tasks", Title: "Task Commands:"},
		&cobra.Group{ID: "insight", Title: "Reports and Assistant:"},
	)

	r.cmd.AddCommand(
		r.registerCommand(),
		r.loginCommand(),
		r.logoutCommand(),
		r.whoamiCommand(),
		r.addCommand(),
		r.listCommand(),
		r.showCommand(),
		r.editCommand(),
		r.doneCommand(),
		r.deleteCommand(),
		r.overdueCommand(),
		r.dashboardCommand(),
		r.analyticsCommand(),
		r.askCommand(),
		r.historyCommand(),
		r.settingsCommand(),
		r.serveCommand(),
	)
}

func (r *RootCommand) registerCommand() *cobra.Command {
	var creds Credentials
	cmd := &cobra.Command{
		Use:         "register",
		Short:       "Create an account and sign in",
		Long:        "Create an account. Values not given as flags are prompted for; the password is read without echo.",
		GroupID:     "account",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSessionAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
			defer cancel()

			return NewRegisterCommand(r.app).Execute(ctx, creds)
		},
	}
	cmd.Flags().StringVarP(&creds.Email, "email", "e", "", "Email address")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Password (prompted for when omitted)")
	cmd.Flags().StringVarP(&creds.Name, "name", "n", "", "Display name")
	return cmd
}

func (r *RootCommand) loginCommand() *cobra.Command {
	var creds Credentials
	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Sign in",
		Long:        "Sign in and keep the session for later commands.",
		GroupID:     "account",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSessionAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
			defer cancel()

			return NewLoginCommand(r.app).Execute(ctx, creds)
		},
	}
	cmd.Flags().StringVarP(&creds.Email, "email", "e", "", "Email address")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Password (prompted for when omitted)")
	return cmd
}

func (r *RootCommand) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "Sign out and forget the saved session",
		GroupID:     "account",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSessionAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
			defer cancel()

			return NewLogoutCommand(r.app).Execute(ctx)
		},
	}
}

func (r *RootCommand) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Short:   "Show the signed-in user",
		GroupID: "account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
			defer cancel()

			return NewWhoAmICommand(r.app).Execute(ctx)
		},
	}
}

func (r *RootCommand) addCommand() *cobra.Command {
	var opts AddOptions
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task",
		Long: `Add a task. The remaining arguments form the title.

Due dates accept YYYY-MM-DD, today, tomorrow, or an offset such as 3d, 2w or 1mo.

Examples:
  tm add Buy milk
  tm add "Quarterly report" --due 1w --priority high`,
		GroupID: "tasks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
			defer cancel()

			return NewAddCommand(r.app).Execute(ctx, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "Longer description")
	cmd.Flags().StringVar(&opts.Due, "due", "", "Due date")
	cmd.Flags().StringVarP(&opts.Priority, "priority", "p", "", "low, medium or high (default medium)")
	cmd.Flags().StringVarP(&opts.Status, "status", "s", "", "todo, in-progress or completed (default todo)")
	return cmd
}

func (r *RootCommand) listCommand() *cobra.Command {
	var opts ListOptions
	cmd := &cobra.Command{
		Use:     "list [search]",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `List tasks with optional filtering and ordering.

The search term matches titles and descriptions, case-insensitively.
The footer counts every task, not only the ones shown.

Examples:
  tm list                          # Everything, newest first
  tm list report                   # Tasks mentioning "report"
  tm list -s in-progress -p high   # Urgent work in flight
  tm list --sort due               # Earliest due date first`,
		GroupID: "tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
			defer cancel()

			return NewListCommand(r.app).Execute(ctx, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Search, "search", "q", "", "Search term")
	cmd.Flags().StringVarP(&opts.Status, "status", "s", "all", "all, todo, in-progress or completed")
	cmd.Flags().StringVarP(&opts.Priority, "priority", "p", "all", "all, low, medium or high")
	cmd.Flags().StringVar(&opts.Sort, "sort", "created", "created, due, priority or title")
	return cmd
}

func (r *RootCommand) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "show <id>",
		Short:   "Show a task",
		Long:    "Show every field of a task. The ID may be shortened to any unique prefix.",
		GroupID: "tasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
			defer cancel()

			return NewShowCommand(r.app).Execute(ctx, args)
		},
	}
}

func (r *RootCommand) editCommand() *cobra.Command {
	var (
		title, description, due, priority, status string
		clearDue                                  bool
	)
	cmd := &cobra.Command{
		Use:     "edit <id>",
		Short:   "Change a task",
		Long:    "Change the given fields of a task. Fields without a flag are left as they are.",
		GroupID: "tasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
			defer cancel()

			flags := cmd.Flags()
			opts := EditOptions{
				Title:       changed(flags, "title", title),
				Description: changed(flags, "description", description),
				Due:         changed(flags, "due", due),
				ClearDue:    clearDue,
				Priority:    changed(flags, "priority", priority),
				Status:      changed(flags, "status", status),
			}
			return NewEditCommand(r.app).Execute(ctx, args, opts)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&due, "due", "", "New due date")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVarP(&status, "status", "s", "", "todo, in-progress or completed")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	return cmd
}

func (r *RootCommand) doneCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>...",
		Short:   "Toggle completion of tasks",
		Long:    "Mark open tasks completed, or reopen completed ones.",
		GroupID: "tasks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
			defer cancel()

			return NewDoneCommand(r.app).Execute(ctx, args)
		},
	}
}

func (r *RootCommand) deleteCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Long:    "Delete a task. This cannot be undone; you are asked to confirm unless --force is given.",
		GroupID: "tasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Confirmation waits on the user
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout()*2)
			defer cancel()

			return NewDeleteCommand(r.app).Execute(ctx, args, force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without asking")
	return cmd
}

func (r *RootCommand) overdueCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "overdue",
		Short:   "List open tasks past their due date",
		GroupID: "tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
			defer cancel()

			return NewOverdueCommand(r.app).Execute(ctx)
		},
	}
}

func (r *RootCommand) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Short:   "Show counters, recent and overdue tasks",
		GroupID: "insight",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
			defer cancel()

			return NewDashboardCommand(r.app).Execute(ctx)
		},
	}
}

func (r *RootCommand) analyticsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "analytics",
		Short:   "Show completion by priority and task distributions",
		GroupID: "insight",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
			defer cancel()

			return NewAnalyticsCommand(r.app).Execute(ctx)
		},
	}
}

func (r *RootCommand) askCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the assistant about your tasks",
		Long: `Ask the assistant a question. The answer is kept in history.

Examples:
  tm ask what should I do first
  tm ask "how am I doing?"`,
		GroupID: "insight",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
			defer cancel()

			return NewAskCommand(r.app).Execute(ctx, args)
		},
	}
}

func (r *RootCommand) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Short:   "List past assistant conversations",
		GroupID: "insight",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
			defer cancel()

			return NewHistoryCommand(r.app).List(ctx)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show one conversation",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
				defer cancel()

				return NewHistoryCommand(r.app).Show(ctx, args)
			},
		},
		&cobra.Command{
			Use:     "delete <id>",
			Aliases: []string{"rm"},
			Short:   "Delete one conversation",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
				defer cancel()

				return NewHistoryCommand(r.app).Delete(ctx, args)
			},
		},
	)
	return cmd
}

func (r *RootCommand) settingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "settings",
		Short:   "Show your preferences",
		GroupID: "account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
			defer cancel()

			return NewSettingsCommand(r.app).Show(ctx)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a preference",
		Long: `Change a preference.

Keys:
  theme      light or dark
  style      concise or detailed assistant replies
  language   a language code such as en`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
			defer cancel()

			return NewSettingsCommand(r.app).Set(ctx, args)
		},
	})
	return cmd
}

func (r *RootCommand) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		Long: `Serve the JSON HTTP API until interrupted.

Clients sign in with POST /api/v1/auth/login and send the returned
token as "Authorization: Bearer <token>".`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSessionAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewServeCommand(r.app).Execute(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides TM_SERVER_ADDR)")
	return cmd
}

// setup resolves the configuration, builds the app and restores the saved session
func (r *RootCommand) setup(cmd *cobra.Command) error {
	if r.app != nil {
		return nil
	}

	cfg, err := r.loadConfig()
	if err != nil {
		return err
	}
	r.config = cfg

	app, err := r.factory(cfg)
	if err != nil {
		return err
	}
	r.app = app

	if cmd.Annotations[skipSessionAnnotation] == "true" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.getAppTimeout())
	defer cancel()
	return r.restoreSession(ctx)
}

// loadConfig layers the global flags over YAML and environment
func (r *RootCommand) loadConfig() (*config.Config, error) {
	flags := r.cmd.PersistentFlags()

	loader := config.NewLoader()
	if path, _ := flags.GetString("config"); path != "" {
		loader = config.NewLoaderFrom(path)
	}

	overrides := &config.ConfigOverrides{
		DBDir:          changed(flags, "db-dir", mustString(flags, "db-dir")),
		DBFilename:     changed(flags, "db-filename", mustString(flags, "db-filename")),
		DBQueryTimeout: changed(flags, "db-query-timeout", mustDuration(flags, "db-query-timeout")),
		DBWriteTimeout: changed(flags, "db-write-timeout", mustDuration(flags, "db-write-timeout")),
		TimeFormat:     changed(flags, "time-format", mustString(flags, "time-format")),
		DateFormat:     changed(flags, "date-format", mustString(flags, "date-format")),
		Timeout:        changed(flags, "app-timeout", mustDuration(flags, "app-timeout")),
		LogLevel:       changed(flags, "log-level", mustString(flags, "log-level")),
		LogFormat:      changed(flags, "log-format", mustString(flags, "log-format")),
	}
	if flags.Changed("recent-limit") {
		limit, _ := flags.GetInt("recent-limit")
		overrides.RecentLimit = &limit
	}
	if flags.Changed("verbose") {
		verbose, _ := flags.GetBool("verbose")
		overrides.Verbose = &verbose
	}

	cfg, err := loader.LoadWithOverrides(overrides)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// restoreSession signs in the user whose token was saved by an earlier login.
// A token the store no longer accepts is forgotten.
func (r *RootCommand) restoreSession(ctx context.Context) error {
	token, err := r.app.tokens.Load()
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if token == "" {
		return nil
	}

	user, err := r.app.api.RestoreSession(ctx, token)
	if errors.IsErrorType(err, errors.ErrorTypeUnauthenticated) {
		logging.Debugf("saved session rejected: %v", err)
		return r.app.tokens.Clear()
	}
	if err != nil {
		return NewErrorHandler().Handle("restore session", err)
	}

	logging.Debugf("restored session for %s", user.Email)
	return nil
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second // Default timeout
}

// changed returns &value when the flag was set on the command line
func changed[T any](flags *pflag.FlagSet, name string, value T) *T {
	if !flags.Changed(name) {
		return nil
	}
	return &value
}

func mustString(flags *pflag.FlagSet, name string) string {
	v, _ := flags.GetString(name)
	return v
}

func mustDuration(flags *pflag.FlagSet, name string) time.Duration {
	v, _ := flags.GetDuration(name)
	return v
}
