package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/tray"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run live recognition with the web UI, stream and API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if cfg.Server.StaticDir = findWebDir(cfg.Server.StaticDir); cfg.Server.StaticDir != "" {
		logger.Info("serving static files", zap.String("dir", cfg.Server.StaticDir))
	}

	application := app.New(cfg, st)
	if err := application.DiscoverPlugins(); err != nil {
		logger.Warn("hook discovery failed", zap.Error(err))
	}
	if err := application.Start(ctx); err != nil {
		// the API still serves classify, samples and history without a camera
		logger.Warn("camera unavailable, live recognition disabled", zap.Error(err))
	}
	defer application.Stop()

	srv := server.New(application.ServerConfig())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx, cfg.Server.Addr)
		cancel()
	}()

	if cfg.Tray.Enabled {
		t := tray.New(application.IsEnabled())
		t.OnToggle(application.SetEnabled)
		t.OnSettings(func() { openBrowser(uiURL(cfg.Server.Addr)) })
		t.OnQuit(cancel)
		application.OnLabel(t.SetLastLabel)

		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		t.Run()
		cancel()
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// findWebDir returns dir if it exists, else the first of the usual locations
// holding a web directory, else "".
func findWebDir(dir string) string {
	candidates := []string{dir, "web", "../web", "../../web"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".mudra", "web"))
	}

	for _, p := range candidates {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

func uiURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logger.Warn("failed to open browser", zap.String("url", url), zap.Error(err))
		return
	}
	go cmd.Wait()
}
