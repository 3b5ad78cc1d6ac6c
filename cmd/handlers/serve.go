package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"giftfinder/internal/config"
	"giftfinder/internal/logger"
	"giftfinder/internal/server"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin form server",
		Long: `Serve starts a local HTTP server with the product entry form. Submitting
the form runs the same publish pipeline as the generate command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, host, port)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "bind address (defaults to server.host)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (defaults to server.port)")

	return cmd
}

func runServe(cmd *cobra.Command, host string, port int) error {
	cfg := config.Get()
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}

	publisher, err := buildPublisher(cfg)
	if err != nil {
		return err
	}

	srv := server.New(publisher, cfg)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	addr := fmt.Sprintf("http://%s:%d/", cfg.Server.Host, cfg.Server.Port)
	cmd.Println(successStyle.Render("Admin form running at " + addr))
	cmd.Println(subtleStyle.Render("Press Ctrl+C to stop."))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
