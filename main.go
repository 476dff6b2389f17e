package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"chatward-plugin/chatfilter"
	"chatward-plugin/command"
	"chatward-plugin/config"
	"chatward-plugin/store"
)

var version = "dev"

// PluginInput is one line from the host: either a chat event (type, sender,
// text, optional channel) or a slash command, always tagged with the user
// identifier the host resolved for its local player. A missing user means
// identity is not established yet.
type PluginInput struct {
	Type    string `json:"type,omitempty"`
	User    string `json:"user,omitempty"`
	Sender  string `json:"sender,omitempty"`
	Text    string `json:"text,omitempty"`
	Channel string `json:"channel,omitempty"`
	Command string `json:"command,omitempty"`
}

// PluginOutput is the verdict line written back to the host.
type PluginOutput struct {
	User   string `json:"user,omitempty"`
	Action string `json:"action"`
	Msg    string `json:"msg,omitempty"`
}

const (
	ActionForward  = "forward"
	ActionSuppress = "suppress"
	ActionReply    = "reply"
)

// App bundles the long-lived pieces the event loop needs.
type App struct {
	Manager    *chatfilter.Manager
	Engine     *chatfilter.Engine
	Dispatcher *command.Dispatcher
}

func buildApp(cfg *config.Config) (*App, store.Store, func(), error) {
	db, err := store.NewBadgerStore(cfg.DB.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	defaults, err := cfg.DefaultPhrases()
	if err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	notify, stopSaver := startSaver(db)
	manager := chatfilter.NewManager(db, defaults, notify)

	app := &App{
		Manager:    manager,
		Engine:     chatfilter.NewEngine(slog.Default()),
		Dispatcher: command.NewDispatcher(manager, cfg.Command.Prefix),
	}
	return app, db, stopSaver, nil
}

// startSaver wires the manager's fire-and-forget change notifications to
// asynchronous store writes. Notifications never block the event path; when
// the queue is full the write is dropped and the next change re-queues the
// record.
func startSaver(s store.Store) (chatfilter.NotifyFunc, func()) {
	type saveRequest struct {
		userID string
		cfg    *chatfilter.FilterConfig
	}
	ch := make(chan saveRequest, 256)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for req := range ch {
			if err := s.SaveConfig(context.Background(), req.userID, req.cfg); err != nil {
				slog.Error("Failed to persist filter config", "user", req.userID, "error", err)
			}
		}
	}()

	notify := func(userID string, cfg *chatfilter.FilterConfig) {
		select {
		case ch <- saveRequest{userID: userID, cfg: cfg}:
		default:
			slog.Warn("Config save queue full, dropping notification", "user", userID)
		}
	}
	stop := func() {
		close(ch)
		<-done
	}
	return notify, stop
}

func main() {
	showVersion := flag.Bool("version", false, "Show plugin version and exit")
	configPath := flag.String("config", "./config.toml", "Path to the configuration file.")
	useDefaults := flag.Bool("use-defaults", false, "Run with internal defaults if the config file is missing.")
	validateConfig := flag.Bool("validate", false, "Validate the configuration file and exit.")
	dryRun := flag.Bool("dry-run", false, "Log what would be suppressed without actually suppressing it.")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}
	if *validateConfig {
		if err := validateConfiguration(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration is INVALID: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Configuration is VALID.")
		return
	}
	if err := runApp(*configPath, *useDefaults, *dryRun); err != nil {
		fmt.Fprintf(os.Stderr, "Application run failed: %v\n", err)
		os.Exit(1)
	}
}

func runApp(configPath string, useDefaults bool, dryRun bool) error {
	cfg, defaultsUsed, err := config.Load(configPath, useDefaults)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.Level.ToSlogLevel()}))
	slog.SetDefault(logger)
	if dryRun {
		slog.Warn("Plugin is running in DRY-RUN mode.")
	}
	slog.Info("Chat filter plugin starting up", "version", version, "config_path", configPath, "using_defaults", defaultsUsed)

	app, db, stopSaver, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer stopSaver()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-shutdownChan
		slog.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	onReload := func(newCfg *config.Config) {
		defaults, err := newCfg.DefaultPhrases()
		if err != nil {
			slog.Error("Reloaded config has unusable default phrases, keeping old defaults", "error", err)
			return
		}
		app.Manager.SetDefaults(defaults)
		slog.Info("Default phrase set updated from reloaded config.")
	}
	go config.StartWatcher(ctx, configPath, onReload, 0)

	return processEvents(ctx, os.Stdin, os.Stdout, app, dryRun)
}

func processEvents(ctx context.Context, r io.Reader, w io.Writer, app *App, dryRun bool) error {
	linesChan := make(chan []byte)
	errChan := make(chan error, 1)
	encoder := json.NewEncoder(w)

	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lineCopy := make([]byte, len(scanner.Bytes()))
			copy(lineCopy, scanner.Bytes())
			linesChan <- lineCopy
		}
		if err := scanner.Err(); err != nil {
			errChan <- err
		}
		close(linesChan)
	}()

	slog.Info("Ready to process events from stdin...")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-linesChan:
			if !ok {
				select {
				case err := <-errChan:
					return err
				default:
				}
				slog.Info("Input stream closed, shutting down.")
				return nil
			}

			if len(line) == 0 {
				continue
			}
			var input PluginInput
			if err := json.Unmarshal(line, &input); err != nil {
				slog.Warn("Failed to decode plugin input JSON", "error", err, "raw_line_prefix", string(line))
				continue
			}

			output := handleInput(ctx, app, &input, dryRun)

			if err := encoder.Encode(output); err != nil {
				if errors.Is(err, os.ErrClosed) || errors.Is(err, syscall.EPIPE) {
					return nil
				}
				slog.Error("Failed to write response to stdout", "error", err)
			}
		}
	}
}

// handleInput routes one line to the command dispatcher or the decision
// engine. A panic anywhere below resolves to "forward": a broken filter must
// never eat messages.
func handleInput(ctx context.Context, app *App, input *PluginInput, dryRun bool) (output PluginOutput) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic recovered while handling input",
				"panic", r, "user", input.User, "stack", string(debug.Stack()),
			)
			output = PluginOutput{User: input.User, Action: ActionForward}
		}
	}()

	// Slash commands arriving as chat text are honored only when typed by the
	// viewing player; anyone else's message is just content to be filtered.
	// The explicit Command field always comes from the host's own input box.
	if input.Command != "" || (app.Dispatcher.Handles(input.Text) && isOwnMessage(input)) {
		cmdLine := input.Command
		if cmdLine == "" {
			cmdLine = input.Text
		}
		reply := app.Dispatcher.Dispatch(ctx, input.User, cmdLine)
		return PluginOutput{User: input.User, Action: ActionReply, Msg: reply}
	}

	cfg, err := app.Manager.GetOrCreate(ctx, input.User)
	if err != nil {
		if !errors.Is(err, chatfilter.ErrIdentityUnavailable) {
			slog.Error("Failed to load filter config, forwarding message", "user", input.User, "error", err)
		}
		return PluginOutput{User: input.User, Action: ActionForward}
	}

	ev := chatfilter.Event{
		Kind:    chatfilter.EventKind(input.Type),
		Text:    input.Text,
		Sender:  input.Sender,
		Channel: input.Channel,
	}
	verdict := app.Engine.Evaluate(cfg, ev)
	if !verdict.Blocked {
		return PluginOutput{User: input.User, Action: ActionForward}
	}
	if dryRun {
		slog.Info("Dry-run: message would be suppressed", "user", input.User, "reason", verdict.Reason)
		return PluginOutput{User: input.User, Action: ActionForward}
	}
	return PluginOutput{User: input.User, Action: ActionSuppress, Msg: verdict.Reason}
}

// isOwnMessage reports whether an event's text was typed by the user the
// plugin is filtering for. Hosts that don't echo a sender name on the local
// player's own messages leave Sender empty.
func isOwnMessage(input *PluginInput) bool {
	return input.Sender == "" || strings.EqualFold(input.Sender, input.User)
}

func validateConfiguration(configPath string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	fmt.Printf("Validating configuration file: %s\n", configPath)
	cfg, _, err := config.Load(configPath, false)
	if err != nil {
		return err
	}
	_, db, stopSaver, err := buildApp(cfg)
	if err != nil {
		return err
	}
	stopSaver()
	return db.Close()
}
