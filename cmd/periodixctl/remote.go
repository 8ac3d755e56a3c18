package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/meltforce/periodix/internal/mcp"
	"github.com/meltforce/periodix/internal/models"
	"github.com/spf13/cobra"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newPhaseCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phase",
		Short: "Mesocycle phase commands",
	}

	var target string
	advance := &cobra.Command{
		Use:   "advance <program-id>",
		Short: "Advance a program to its next phase, or to --to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid program id %q", args[0])
			}
			t, err := mcp.NewHTTPClient(root.server).AdvancePhase(cmd.Context(), id, target != "", target)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (x%.2f, %d exercises updated)\n",
				t.PreviousPhase, t.NewPhase, t.VolumeMultiplier, t.ExercisesUpdated)
			return nil
		},
	}
	advance.Flags().StringVar(&target, "to", "", "jump to this phase (mev, mav, mrv, deload)")
	cmd.AddCommand(advance)
	return cmd
}

func newVolumeCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "volume",
		Short: "Weekly training volume reports",
	}
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON")

	current := &cobra.Command{
		Use:   "current",
		Short: "Completed vs planned sets for the current week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := mcp.NewHTTPClient(root.server).CurrentWeekVolume(cmd.Context(), 0)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), v)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Week %s to %s\n", v.WeekStart, v.WeekEnd)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "GROUP\tDONE\tPLANNED\tLEFT\tMEV/MAV/MRV\tZONE")
			for _, g := range v.MuscleGroups {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d/%d/%d\t%s\n",
					g.MuscleGroup, g.CompletedSets, g.PlannedSets, g.RemainingSets, g.MEV, g.MAV, g.MRV, g.Zone)
			}
			return tw.Flush()
		},
	}

	var weeks int
	var group string
	history := &cobra.Command{
		Use:   "history",
		Short: "Completed sets per week over a trailing window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := mcp.NewHTTPClient(root.server).VolumeHistory(cmd.Context(), 0, weeks, group)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), h)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "WEEK\tGROUP\tSETS\tMEV/MAV/MRV")
			for _, w := range h.Weeks {
				for _, g := range w.MuscleGroups {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d/%d/%d\n", w.WeekStart, g.MuscleGroup, g.CompletedSets, g.MEV, g.MAV, g.MRV)
				}
			}
			return tw.Flush()
		},
	}
	history.Flags().IntVar(&weeks, "weeks", 0, "window length in weeks (server default when 0)")
	history.Flags().StringVar(&group, "muscle-group", "", "only this muscle group")

	programVolume := &cobra.Command{
		Use:   "program",
		Short: "Planned weekly sets of the active program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := mcp.NewHTTPClient(root.server).ProgramVolume(cmd.Context(), 0)
			if err != nil {
				return err
			}
			if a == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No active program.")
				return nil
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), a)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Program %d, phase %s\n", a.ProgramID, a.MesocyclePhase)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "GROUP\tPLANNED\tMEV/MAV/MRV\tZONE\tWARNING")
			for _, g := range a.MuscleGroups {
				warning := ""
				if g.Warning != nil {
					warning = *g.Warning
				}
				fmt.Fprintf(tw, "%s\t%d\t%d/%d/%d\t%s\t%s\n", g.MuscleGroup, g.PlannedSets, g.MEV, g.MAV, g.MRV, g.Zone, warning)
			}
			return tw.Flush()
		},
	}

	landmarks := &cobra.Command{
		Use:   "landmarks",
		Short: "MEV/MAV/MRV per muscle group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := mcp.NewHTTPClient(root.server).Landmarks(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), l)
			}
			groups := make([]models.MuscleGroup, 0, len(l))
			for g := range l {
				groups = append(groups, g)
			}
			sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "GROUP\tMEV\tMAV\tMRV")
			for _, g := range groups {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", g, l[g].MEV, l[g].MAV, l[g].MRV)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(current, history, programVolume, landmarks)
	return cmd
}
