package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	styles "github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/keilerkonzept/footdash/internal/chart/echarts"
	"github.com/keilerkonzept/footdash/internal/dashboard"
	"github.com/keilerkonzept/footdash/internal/race"
	"github.com/keilerkonzept/footdash/internal/views"
	"github.com/keilerkonzept/footdash/log"
)

var (
	headerStyle = styles.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = styles.NewStyle().Padding(0, 1)
)

type renderOptions struct {
	filters filterFlags
	out     string
	frames  int
}

func newRenderCmd() *cobra.Command {
	var o renderOptions
	cmd := &cobra.Command{
		Use:   "render <view>",
		Short: "Render one view to an HTML page",
		Long: `Fetches one view and writes it as an echarts HTML page.
For bar races the first --frames frames are written as separate charts.`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			ids := views.DefaultRouter().IDs()
			out := make([]string, len(ids))
			for i, id := range ids {
				out[i] = string(id)
			}
			return out, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return renderView(cmd.Context(), views.ID(args[0]), o)
		},
	}
	o.filters.register(cmd.Flags())
	cmd.Flags().StringVarP(&o.out, "out", "o", "footdash.html", "Output file (- for stdout)")
	cmd.Flags().IntVar(&o.frames, "frames", 10, "Number of bar race frames to write")
	return cmd
}

func renderView(ctx context.Context, id views.ID, o renderOptions) error {
	if o.frames < 1 {
		return fmt.Errorf("--frames must be >= 1")
	}
	fs := o.filters.state()
	sink := echarts.New(
		echarts.WithMaxFrames(o.frames),
		echarts.WithPageTitle("footdash: "+fs.Label()))
	sched := race.NewManualScheduler()
	ctrl := dashboard.New(newClient(), sink,
		dashboard.WithFilters(fs),
		dashboard.WithLogger(log.Default().Named("dashboard")),
		dashboard.WithRaceOptions(race.WithScheduler(sched)))
	defer ctrl.Close()

	selectErr := ctrl.SelectView(ctx, id)
	var unknown *views.UnknownViewError
	if errors.As(selectErr, &unknown) {
		return selectErr
	}
	for i := 1; i < o.frames && i < ctrl.Animator().Len(); i++ {
		sched.Fire()
	}

	if err := writeOutput(o.out, sink.Render); err != nil {
		return err
	}
	log.Info("view rendered",
		log.String("view", string(id)),
		log.String("filters", fs.Label()),
		log.Int("charts", sink.Frames()),
		log.String("out", o.out))
	return selectErr
}

func writeOutput(path string, render func(io.Writer) error) error {
	if path == "-" {
		return render(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

func newTournamentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tournaments",
		Short: "List tournaments known to the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := newClient().Tournaments(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, len(list))
			for i, t := range list {
				rows[i] = []string{t.Name, strconv.Itoa(t.Matches)}
			}
			printTable(cmd.OutOrStdout(), []string{"TOURNAMENT", "MATCHES"}, rows)
			return nil
		},
	}
}

func newViewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the available views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printTable(cmd.OutOrStdout(), []string{"VIEW", "KIND", "RESOURCE", "QUERY"}, viewRows(views.DefaultRouter()))
			return nil
		},
	}
}

func viewRows(r *views.Router) [][]string {
	ids := r.IDs()
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		d, err := r.Resolve(id)
		if err != nil {
			continue
		}
		rows = append(rows, []string{string(d.ID), string(d.Kind), d.Path, d.Overrides().Encode()})
	}
	return rows
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(styles.HiddenBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) styles.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}
