package main

import (
	"cmp"
	"fmt"
	"slices"
	"text/tabwriter"

	wl "deedles.dev/paber/client"
	"deedles.dev/paber/internal/wallpaper"
	"github.com/spf13/cobra"
)

func newGlobalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "globals",
		Short: "List the globals that the compositor advertises",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			setupLogging(cmp.Or(level, "info"))

			state, err := wl.Dial()
			if err != nil {
				return fmt.Errorf("connect to Wayland: %w", err)
			}
			defer state.Close()

			registry := state.Display().GetRegistry()
			err = state.RoundTrip()
			if err != nil {
				return err
			}

			globals := make([]wl.Global, 0, len(registry.Globals()))
			for _, g := range registry.Globals() {
				globals = append(globals, g)
			}
			slices.SortFunc(globals, func(g1, g2 wl.Global) int { return cmp.Compare(g1.Name, g2.Name) })

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tINTERFACE\tVERSION")
			for _, g := range globals {
				fmt.Fprintf(w, "%v\t%v\t%v\n", g.Name, g.Interface, g.Version)
			}
			return w.Flush()
		},
	}
}

func newOutputsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outputs",
		Short: "List the outputs that can be selected with --monitors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			setupLogging(cmp.Or(level, "warn"))

			session, err := wallpaper.Dial(wallpaper.Options{})
			if err != nil {
				return fmt.Errorf("connect to Wayland: %w", err)
			}
			defer session.Close()

			err = session.NegotiateGlobals()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "INDEX\tNAME\tSIZE\tSCALE\tDESCRIPTION")
			for i, o := range session.Outputs() {
				width, height := o.Size()
				fmt.Fprintf(w, "%v\t%v\t%vx%v\t%v\t%v\n", i, o, width, height, o.Scale(), o.Description())
			}
			return w.Flush()
		},
	}
}
