package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/bird/internal/app"
	"github.com/ayusman/bird/internal/server"
	"github.com/ayusman/bird/internal/tray"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	ac, err := appConfig(cfg, st)
	if err != nil {
		return err
	}
	application, err := app.New(ac)
	if err != nil {
		return err
	}
	if err := application.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	}

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		log.Printf("Serving static files from: %s", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Registry:  application.Registry(),
		Plugins:   application.PluginManager(),
		Frames:    application.Frames(),
	})
	defer srv.Close()

	if err := application.Start(); err != nil {
		return fmt.Errorf("start tracking: %w", err)
	}
	defer application.Stop()

	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if noTray {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		return nil
	}

	t := tray.New(ac.Hands...)
	t.OnToggle(application.SetEnabled)
	t.OnViewer(func() {
		if err := openBrowser(viewerURL(cfg.Server.Addr)); err != nil {
			log.Printf("Error opening viewer: %v", err)
		}
	})
	application.OnEvent(func(e app.Event) {
		t.SetStatus(e.Hand, string(application.Status(e.Hand)))
	})
	t.Run()
	return nil
}

func viewerURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) error {
	name := "xdg-open"
	if runtime.GOOS == "darwin" {
		name = "open"
	}
	return exec.Command(name, url).Start()
}
