package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ayusman/bird/internal/app"
	"github.com/ayusman/bird/internal/config"
	"github.com/ayusman/bird/internal/store"
)

var (
	configFile string
	profile    string
	noTray     bool
	force      bool
	preset     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bird",
		Short: "3D hand cursor from a cupped hand",
		RunE:  runServe,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.bird/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "stored tuning profile to use")
	rootCmd.Flags().BoolVar(&noTray, "no-tray", false, "run without the system tray")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "track hands and serve the API",
		RunE:  runServe,
	}
	serveCmd.Flags().BoolVar(&noTray, "no-tray", false, "run without the system tray")

	replayCmd := &cobra.Command{
		Use:   "replay [recording_id]",
		Short: "run a stored recording through a fresh cursor",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplay,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage the config file",
	}
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	initCmd.Flags().StringVar(&preset, "preset", "", "cursor preset")
	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list cursor presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}
	configCmd.AddCommand(initCmd, presetsCmd)

	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "manage tuning profiles",
	}
	profilesListCmd := &cobra.Command{
		Use:   "list",
		Short: "list tuning profiles",
		RunE:  listProfiles,
	}
	profilesCmd.AddCommand(profilesListCmd)

	recordingsCmd := &cobra.Command{
		Use:   "recordings",
		Short: "list recordings",
		RunE:  listRecordings,
	}

	rootCmd.AddCommand(serveCmd, replayCmd, newRecordCmd(), configCmd, profilesCmd, recordingsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func configPath() string {
	if configFile != "" {
		return configFile
	}
	return filepath.Join(config.DataDir(), "config.yaml")
}

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist yet.
func loadConfig() (*config.Config, error) {
	path := configPath()
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if configFile == "" && errors.Is(err, fs.ErrNotExist) {
		return config.DefaultConfig(), nil
	}
	return nil, err
}

func openStore(cfg *config.Config) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return store.New(cfg.Store.Path)
}

// appConfig converts the file config, applying the --profile tuning when
// one is named.
func appConfig(cfg *config.Config, st *store.Store) (app.Config, error) {
	backend, err := cfg.Backend()
	if err != nil {
		return app.Config{}, err
	}
	hands, err := cfg.Chiralities()
	if err != nil {
		return app.Config{}, err
	}

	ac := app.DefaultConfig()
	ac.Store = st
	ac.PluginDir = cfg.Plugins.Dir
	ac.PluginTimeout = cfg.Plugins.Timeout
	ac.Camera.DeviceID = cfg.Tracking.CameraID
	ac.TickHz = cfg.Tracking.TickHz
	ac.IdleHz = cfg.Tracking.IdleHz
	ac.IdleAfter = cfg.Tracking.IdleAfter
	ac.MotionThreshold = cfg.Tracking.MotionThreshold
	ac.Backend = backend
	ac.Hands = hands
	ac.Landmarks = cfg.LandmarkConfig()
	ac.Detector = cfg.DetectorConfig()
	ac.Cursor = cfg.CursorConfig()
	if ac.Zones, err = cfg.CursorZones(); err != nil {
		return app.Config{}, err
	}
	if cfg.Tracking.User != "" {
		ac.User = cfg.Tracking.User
	}

	if profile != "" {
		p, err := st.Profiles().GetByName(profile)
		if err != nil {
			return app.Config{}, fmt.Errorf("profile %q: %w", profile, err)
		}
		ac.Cursor = p.CursorConfig()
	}
	return ac, nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := configPath()
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return err
		}
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

// findWebDir searches for the viewer's static files in common locations.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeWebDir := filepath.Join(config.DataDir(), "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}
	return ""
}
