package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/sashakosti/Go_Race_Bot/internal/config"
	"github.com/sashakosti/Go_Race_Bot/internal/service"
	"github.com/sashakosti/Go_Race_Bot/internal/telegram"
	"github.com/sashakosti/Go_Race_Bot/internal/web"
	"github.com/sashakosti/Go_Race_Bot/internal/wizard"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "racebot",
		Short: "Telegram bot that records race results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd.Context())
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file (env variables override it)")

	rootCmd.AddCommand(newWebCmd(), newLeaderboardCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig завершает процесс, если не хватает обязательных настроек.
func loadConfig(needBot bool) *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(needBot); err != nil {
		log.Fatalf("Error: %v", err)
	}
	return cfg
}

func runBot(ctx context.Context) error {
	cfg := loadConfig(true)

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	opts := wizard.Options{Location: loc}
	if cfg.DateMode == config.DateModePrompt {
		opts.DateMode = wizard.DatePrompt
	}

	svc := service.New(store)
	bot, err := telegram.NewBot(cfg.TelegramToken, svc, opts)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	if cfg.WebAddr != "" {
		go func() {
			if err := web.NewServer(svc).ListenAndServe(ctx, cfg.WebAddr); err != nil {
				log.Printf("HTTP server error: %v", err)
			}
		}()
	}

	bot.Start(ctx)
	return nil
}

func newWebCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve only the read-only leaderboard page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(false)
			if addr == "" {
				addr = cfg.WebAddr
			}
			if addr == "" {
				addr = ":8080"
			}

			store, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			return web.NewServer(service.New(store)).ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default WEB_ADDR or :8080)")
	return cmd
}

func newLeaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the leaderboard once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig(false)

			store, closeStore, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			rows, err := service.New(store).GetLeaderboard(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch leaderboard: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), service.FormatLeaderboard(rows))
			return nil
		},
	}
}
