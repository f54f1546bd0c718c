package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kimyerak/guidely-chat/internal/adapter/generation"
	"github.com/kimyerak/guidely-chat/internal/config"
	"github.com/kimyerak/guidely-chat/internal/console"
	"github.com/kimyerak/guidely-chat/internal/logger"
	"github.com/kimyerak/guidely-chat/internal/policy"
	store "github.com/kimyerak/guidely-chat/internal/repository"
	"github.com/kimyerak/guidely-chat/internal/service"
	"github.com/kimyerak/guidely-chat/internal/stream"
	httpserver "github.com/kimyerak/guidely-chat/internal/transport/http"
	v1 "github.com/kimyerak/guidely-chat/internal/transport/http/v1"
)

var rootCmd = &cobra.Command{
	Use:   "guidely-chat",
	Short: "Conversation orchestration server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newWatchCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "guidely-chat: %v\n", err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := store.New(cfg.DatabaseDriver, cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to initialize store: %w", err)
			}
			defer db.Close()

			logger.L.Info("database migrated", "driver", cfg.DatabaseDriver, "url", cfg.DatabaseURL)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), v1.Version)
		},
	}
}

func newChatCmd() *cobra.Command {
	var (
		addr      string
		userID    string
		character string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Hold a conversation with a running server from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			client := console.NewClient(addr, 60*time.Second)

			started, err := client.StartConversation(ctx, userID)
			if err != nil {
				return fmt.Errorf("start conversation: %w", err)
			}
			fmt.Fprintf(out, "Session established: %s\n", started.SessionID)
			fmt.Fprintln(out, "Type a message and press Enter to send. /quit ends the session.")

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() || ctx.Err() != nil {
					break
				}
				input := strings.TrimSpace(scanner.Text())
				if input == "" {
					continue
				}
				if input == "/quit" {
					break
				}

				reply, err := client.Chat(ctx, started.SessionID, input, character)
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
				fmt.Fprintln(out, reply.Content)
			}

			// The session is closed even when the terminal was interrupted.
			closeCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			if _, err := client.EndConversation(closeCtx, started.SessionID, "console closed"); err != nil {
				return fmt.Errorf("end conversation: %w", err)
			}
			credits, err := client.Credits(closeCtx, started.SessionID)
			if err != nil {
				return fmt.Errorf("fetch credits: %w", err)
			}

			fmt.Fprintf(out, "\n%d messages\n", credits.Summary.MessageCount)
			for _, line := range credits.Summaries {
				fmt.Fprintln(out, line)
			}
			for _, c := range credits.Credits {
				fmt.Fprintf(out, "%s: %s\n", c.Role, c.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "server base URL")
	cmd.Flags().StringVar(&userID, "user", "", "user id attached to the session")
	cmd.Flags().StringVar(&character, "character", "", "character the assistant speaks as")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "watch SESSION_ID",
		Short: "Print the events of a session as they happen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := console.NewClient(addr, 0)
			return client.Watch(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "server base URL")
	return cmd
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.LogLevel)

	logger.L.Info("starting guidely-chat",
		"version", v1.Version,
		"http_port", cfg.HTTPPort,
		"database_driver", cfg.DatabaseDriver,
		"generation_mode", cfg.GenerationMode)

	// Initialize store
	db, err := store.New(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer db.Close()

	// Initialize policy engine
	policyEngine, err := policy.LoadEngine(ctx, cfg.PolicyPath)
	if err != nil {
		return fmt.Errorf("failed to initialize policy engine: %w", err)
	}

	// Initialize event stream hub
	hub := stream.NewHub()
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	// Initialize service
	svc := service.New(db, generation.NewGenerator(cfg), policyEngine, hub, cfg)

	server := httpserver.NewServer(svc, stream.NewServer(hub))

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.L.Info("HTTP API started", "port", cfg.HTTPPort)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	}

	logger.L.Info("shutting down guidely-chat")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L.Error("failed to shutdown server gracefully", "error", err)
	}

	logger.L.Info("guidely-chat stopped")
	return nil
}
