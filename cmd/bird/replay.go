package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/bird/internal/app"
	"github.com/ayusman/bird/internal/cursor"
)

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.Recordings().GetByID(args[0])
	if err != nil {
		return fmt.Errorf("recording %s: %w", args[0], err)
	}
	frames, err := st.Recordings().Frames(rec.ID)
	if err != nil {
		return err
	}

	tuning := cfg.CursorConfig()
	if profile != "" {
		p, err := st.Profiles().GetByName(profile)
		if err != nil {
			return fmt.Errorf("profile %q: %w", profile, err)
		}
		tuning = p.CursorConfig()
	}

	ticks, err := app.Replay(frames, tuning)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s hand, %d frames at %d Hz)\n", rec.Name, rec.Hand, rec.Frames, rec.TickHz)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TICK\tRESULT\tX\tY\tZ\tRANGE\tTWIST\tDEPTH\tSELECTED")
	for _, t := range ticks {
		s := t.State
		fmt.Fprintf(w, "%d\t%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.1f\t%.4f\t%s\n",
			t.Index,
			t.Result,
			s.Position.X, s.Position.Y, s.Position.Z,
			s.Range,
			s.Twist,
			t.Debug.Depth,
			selection(s),
		)
	}
	return w.Flush()
}

func selection(s cursor.State) string {
	switch {
	case s.JustSelected:
		return "select"
	case s.JustDeselected:
		return "release"
	case s.Selected:
		return "yes"
	default:
		return "-"
	}
}

func listProfiles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	profiles, err := st.Profiles().List()
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		fmt.Println("no profiles found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tQ\tR_SCALE\tSELECT\tRELEASE\tNEAR\tFAR\tREVERSE")
	for _, p := range profiles {
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%g\t%g\t%g\t%t\n",
			p.Name, p.ProcessVariance, p.RScale, p.SelectDepth, p.ReleaseDepth, p.Near, p.Far, p.TwistReverse)
	}
	return w.Flush()
}

func listRecordings(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	recs, err := st.Recordings().List()
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no recordings found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tHAND\tFRAMES\tHZ\tCREATED")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.Name, r.Hand, r.Frames, r.TickHz, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}
