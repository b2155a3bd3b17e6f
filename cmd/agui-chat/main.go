// Command agui-chat is a terminal chat client for AG-UI agent servers.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ag-ui/chat-client/pkg/client"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := LoadConfig()

	cmd := &cobra.Command{
		Use:           "agui-chat",
		Short:         "Chat with an AG-UI agent from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runChat(cmd.Context(), cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.Endpoint, "endpoint", cfg.Endpoint, "agent WebSocket endpoint (AGUI_ENDPOINT)")
	flags.DurationVar(&cfg.ReconnectDelay, "reconnect-delay", cfg.ReconnectDelay, "wait between reconnect attempts (AGUI_RECONNECT_DELAY)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error (AGUI_LOG_LEVEL)")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this file (AGUI_LOG_FILE)")

	cmd.AddCommand(newSendCmd(cfg))
	return cmd
}

func newSendCmd(cfg *Config) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Send one message and print the agent's reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runSend(ctx, cfg, strings.Join(args, " "), cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "give up waiting for the reply after this long")
	return cmd
}

// newLogger builds the process logger. Logs go to the configured file, or to
// fallback when no file is set.
func newLogger(cfg *Config, fallback io.Writer) (*logrus.Logger, func(), error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetOutput(fallback)

	if cfg.LogFile == "" {
		return logger, func() {}, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, func() { _ = f.Close() }, nil
}

func runChat(ctx context.Context, cfg *Config) error {
	// The terminal belongs to the UI, so logs are dropped unless a file is set.
	logger, closeLog, err := newLogger(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	var program *tea.Program
	c, err := client.New(cfg.ClientConfig(),
		client.WithLogger(logger),
		client.WithSendErrorHandler(func(err error) {
			if program != nil {
				program.Send(noticeMsg("message not delivered: " + err.Error()))
			}
		}),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	updates, unsubscribe := c.Subscribe()
	defer unsubscribe()

	program = tea.NewProgram(newModel(c, updates, cfg.Endpoint), tea.WithAltScreen(), tea.WithContext(ctx))
	if err := c.Connect(); err != nil {
		return err
	}

	logger.WithField("endpoint", cfg.Endpoint).Info("starting chat")
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// runSend submits text once connected and prints the agent's reply.
func runSend(ctx context.Context, cfg *Config, text string, out io.Writer) error {
	logger, closeLog, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	c, err := client.New(cfg.ClientConfig(), client.WithLogger(logger))
	if err != nil {
		return err
	}
	defer c.Close()

	updates, unsubscribe := c.Subscribe()
	defer unsubscribe()

	if err := c.Connect(); err != nil {
		return err
	}

	reply, err := awaitReply(ctx, c, updates, text)
	if err != nil {
		return err
	}
	printReply(out, reply)
	return nil
}
