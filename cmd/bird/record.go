package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/bird/internal/app"
	"github.com/ayusman/bird/internal/hand"
)

var (
	recordHand     string
	recordDuration time.Duration
)

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record [name]",
		Short: "record one hand's frames for later replay",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecord,
	}
	cmd.Flags().StringVar(&recordHand, "hand", "right", "hand to record (left or right)")
	cmd.Flags().DurationVar(&recordDuration, "duration", 5*time.Second, "recording length")
	return cmd
}

func runRecord(cmd *cobra.Command, args []string) error {
	ch, err := hand.ParseChirality(recordHand)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ac, err := appConfig(cfg, st)
	if err != nil {
		return err
	}
	ac.Hands = []hand.Chirality{ch}

	application, err := app.New(ac)
	if err != nil {
		return err
	}
	if err := application.Start(); err != nil {
		return fmt.Errorf("start tracking: %w", err)
	}
	defer application.Stop()

	if _, err := application.StartRecording(args[0], ch); err != nil {
		return err
	}
	log.Printf("Recording for %s", recordDuration)
	time.Sleep(recordDuration)

	rec, err := application.StopRecording()
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%d frames\n", rec.ID, rec.Frames)
	return nil
}
