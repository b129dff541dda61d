package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vsixget/internal/config"
	"vsixget/internal/server"
	"vsixget/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the download directory over HTTP",
	Long:  `Starts a read-only HTTP server listing and serving the downloaded .vsix packages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runServe()
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (default 8080)")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	config := config.GetConfig()

	if err := utils.EnsureDirectory(config.DownloadDir); err != nil {
		return fmt.Errorf("error preparing download directory: %w", err)
	}

	srv := createServer(config)
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	protocol := "http"
	if config.CertFile != "" {
		protocol = "https"
	}
	fmt.Printf("Server started. Packages are available at: %s://%s/api/packages\n", protocol, addr)
	fmt.Println("Press Ctrl+C to stop the server")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		fmt.Printf("\nSignal received: %v. Stopping server...\n", sig)
	case err := <-errChan:
		return fmt.Errorf("server start error: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}

	fmt.Println("Server stopped successfully")
	return nil
}

func createServer(config config.Config) *server.Server {
	if config.CertFile != "" {
		return server.NewWithTLS(config.DownloadDir, config.CertFile, config.KeyFile)
	}
	return server.New(config.DownloadDir)
}
