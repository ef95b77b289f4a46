package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"breadbot/bot"
	"breadbot/internal/api"
	"breadbot/internal/config"
	"breadbot/internal/dispatch"
	"breadbot/internal/economy"
	"breadbot/internal/playerlist"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot",
	Long:  `Start the Telegram long-poll loop and, when enabled, the ops HTTP server.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token missing: set %s or [telegram].token", config.TokenEnv)
	}

	store, closeStore, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	tg, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	tg.Debug = cfg.Telegram.Debug

	b := bot.New(tg, cfg.Telegram.TimeoutSeconds)
	engine := economy.New(cfg.Economy.Rules(), economy.NewRand())
	lister := playerlist.NewExec(cfg.Players.Command, cfg.Players.Timeout())
	b.SetDispatcher(dispatch.New(store, engine, b, lister))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.API.Enabled {
		srv := &http.Server{
			Addr:    net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port)),
			Handler: api.NewServer(store).Handler(),
		}
		go func() {
			log.Printf("api: listening on %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("api: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	log.Printf("serve: storage=%s path=%s", cfg.Storage.Backend, cfg.Storage.Path)
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
