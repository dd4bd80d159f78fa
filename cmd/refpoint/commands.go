package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	boltstore "github.com/samirrijal/refpoint/internal/adapters/bolt"
	"github.com/samirrijal/refpoint/internal/core/domain"
	"github.com/samirrijal/refpoint/internal/core/usecases"
	"github.com/samirrijal/refpoint/internal/pkg/config"
	"github.com/samirrijal/refpoint/internal/pkg/format"
	"github.com/samirrijal/refpoint/internal/pkg/logging"
)

// cli holds what every subcommand shares. Only session commands open the
// database, so inverse works without one.
type cli struct {
	dbPath    string
	sessionID string
	unit      string
	logLevel  string

	cfg       *config.Config
	sessions  *usecases.SessionService
	presenter *format.Presenter
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "refpoint",
		Short:         "Mark two reference points and measure bearing, distance and altitude between them",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "bolt database file (default persistence.bolt_path)")
	root.PersistentFlags().StringVarP(&c.sessionID, "session", "s", "cli", "session to operate on")
	root.PersistentFlags().StringVar(&c.unit, "unit", "", "altitude unit: m or ft (default display.altitude_unit)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		c.inverseCommand(),
		c.setCommand(),
		c.showCommand(),
		c.computeCommand(),
		c.clearCommand(),
		c.langCommand(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	logging.Setup(c.logLevel, "console")

	cfg, err := config.Load("refpoint-cli")
	if err != nil {
		return err
	}
	c.cfg = cfg

	if c.dbPath == "" {
		c.dbPath = cfg.Persistence.BoltPath
	}
	if c.unit == "" {
		c.unit = cfg.Display.AltitudeUnit
	}
	unit, err := format.ParseUnit(c.unit)
	if err != nil {
		return err
	}
	c.presenter = format.NewPresenter(unit)
	return nil
}

// withSession opens the bolt store and the CLI session for the duration of
// one command.
func (c *cli) withSession(fn func(cmd *cobra.Command, args []string, sess *usecases.Session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, err := boltstore.Open(c.dbPath)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				slog.Warn("close store", "error", err)
			}
		}()

		c.sessions = usecases.NewSessionService(store, nil, nil, nil, usecases.SessionConfig{
			DefaultLanguage: c.cfg.Display.DefaultLanguage,
		})
		sess, err := c.sessions.Open(cmd.Context(), c.sessionID)
		if err != nil {
			return err
		}
		return fn(cmd, args, sess)
	}
}

func (c *cli) inverseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inverse FROM TO",
		Short: "Bearing and distance between two coordinates (lat,lon[,alt])",
		Long: "Bearing and distance between two coordinates given as lat,lon[,alt].\n" +
			"Put -- before arguments that start with a minus sign.",
		Example: "  refpoint inverse 39.9042,116.4074 31.2304,121.4737\n" +
			"  refpoint inverse -- -33.8688,151.2093,58 51.5074,-0.1278",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := domain.ParseGeoPoint(args[0])
			if err != nil {
				return fmt.Errorf("from: %w", err)
			}
			to, err := domain.ParseGeoPoint(args[1])
			if err != nil {
				return fmt.Errorf("to: %w", err)
			}

			g := usecases.Inverse(from, to)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Bearing\t%s (%s)\n", format.Bearing(g.BearingDegrees), format.Compass(g.BearingDegrees))
			fmt.Fprintf(w, "Distance\t%s\n", format.Distance(g.DistanceMeters))
			fmt.Fprintf(w, "Altitude delta\t%s\n", c.presenter.Altitude(g.AltitudeDeltaMeters))
			fmt.Fprintf(w, "Midpoint\t%.6f, %.6f\n", g.Midpoint.Lat, g.Midpoint.Lon)
			return w.Flush()
		},
	}
}

func (c *cli) setCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "set a|b LAT,LON[,ALT]",
		Short:   "Set reference point A or B",
		Example: "  refpoint set a 39.9042,116.4074,44\n  refpoint set b -33.8688,151.2093",
		Args:    cobra.ExactArgs(2),
		RunE: c.withSession(func(cmd *cobra.Command, args []string, sess *usecases.Session) error {
			role, err := domain.ParseRole(args[0])
			if err != nil {
				return err
			}
			p, err := domain.ParseGeoPoint(args[1])
			if err != nil {
				return err
			}
			out, err := c.sessions.SetPoint(cmd.Context(), sess, role, p)
			return c.render(cmd.OutOrStdout(), out, err)
		}),
	}
	// Stop flag parsing at the role so negative coordinates are positional.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func (c *cli) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored reference points",
		Args:  cobra.NoArgs,
		RunE: c.withSession(func(cmd *cobra.Command, args []string, sess *usecases.Session) error {
			return c.render(cmd.OutOrStdout(), usecases.Outcome{Snapshot: sess.Store.Snapshot()}, nil)
		}),
	}
}

func (c *cli) computeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compute",
		Short: "Compute bearing and distance from A to B",
		Args:  cobra.NoArgs,
		RunE: c.withSession(func(cmd *cobra.Command, args []string, sess *usecases.Session) error {
			out, err := c.sessions.Compute(cmd.Context(), sess)
			return c.render(cmd.OutOrStdout(), out, err)
		}),
	}
}

func (c *cli) clearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [a|b]",
		Short: "Clear one reference point, or both",
		Args:  cobra.MaximumNArgs(1),
		RunE: c.withSession(func(cmd *cobra.Command, args []string, sess *usecases.Session) error {
			if len(args) == 0 {
				out, err := c.sessions.ClearAll(cmd.Context(), sess)
				return c.render(cmd.OutOrStdout(), out, err)
			}
			role, err := domain.ParseRole(args[0])
			if err != nil {
				return err
			}
			out, err := c.sessions.ClearPoint(cmd.Context(), sess, role)
			return c.render(cmd.OutOrStdout(), out, err)
		}),
	}
}

func (c *cli) langCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lang en|zh",
		Short: "Set the language of messages",
		Args:  cobra.ExactArgs(1),
		RunE: c.withSession(func(cmd *cobra.Command, args []string, sess *usecases.Session) error {
			lang := args[0]
			out, err := c.sessions.UpdatePreferences(cmd.Context(), sess, &lang, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "language: %s\n", sess.Preferences().Language)
			if out.Notice != nil {
				fmt.Fprintln(cmd.OutOrStdout(), out.Notice.Text)
			}
			return nil
		}),
	}
}

// render prints the snapshot and notice. Bearing-undefined and persistence
// failures still leave a valid snapshot and are not command failures.
func (c *cli) render(w io.Writer, out usecases.Outcome, err error) error {
	switch {
	case err == nil, errors.Is(err, domain.ErrBearingUndefined):
	case errors.Is(err, domain.ErrPersistence):
		slog.Warn("change kept in memory only", "error", err)
	default:
		if out.Notice != nil {
			fmt.Fprintln(w, out.Notice.Text)
		}
		return err
	}

	d := c.presenter.Display(out.Snapshot)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "A\t%s\n", point(out.Snapshot.PointA, d.AltitudeA))
	fmt.Fprintf(tw, "B\t%s\n", point(out.Snapshot.PointB, d.AltitudeB))
	fmt.Fprintf(tw, "Bearing\t%s (%s)\n", d.Bearing, d.Compass)
	fmt.Fprintf(tw, "Distance\t%s\n", d.Distance)
	fmt.Fprintf(tw, "Altitude delta\t%s\n", d.AltitudeDelta)
	fmt.Fprintf(tw, "State\t%s\n", out.Snapshot.Result.State)
	if err := tw.Flush(); err != nil {
		return err
	}
	if out.Notice != nil {
		fmt.Fprintln(w, out.Notice.Text)
	}
	return nil
}

func point(p *domain.GeoPoint, altitude string) string {
	if p == nil {
		return format.Sentinel
	}
	return fmt.Sprintf("%.6f, %.6f  alt %s", p.Lat, p.Lon, altitude)
}
