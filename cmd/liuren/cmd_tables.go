package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/liuren-api/internal/calendar"
	"github.com/zapponejosh/liuren-api/internal/strokes"
)

func newElementsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "elements",
		Short: "List the five elements and their cycles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			els := a.reg.Elements.All()
			return a.print(cmd.OutOrStdout(), els, func(w io.Writer) {
				for _, e := range els {
					fmt.Fprintf(w, "%s  生%s  克%s  %s\n", e.Name, e.Generates, e.Overcomes, e.Description)
				}
			})
		},
	}
}

func newDayMasterCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "daymaster YYYY-MM-DD",
		Short: "Estimate the day-element from the lunar month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := calendar.ParseDate(args[0])
			if err != nil {
				return err
			}
			svc, done, err := a.service(false)
			if err != nil {
				return err
			}
			defer done()

			res := svc.DayMaster(d)
			return a.print(cmd.OutOrStdout(), res, func(w io.Writer) {
				fmt.Fprintf(w, "农历：%s\n", res.Lunar)
				fmt.Fprintf(w, "日主：%s\n", res.Element.Name)
				fmt.Fprintf(w, "喜用：%s\n", strings.Join(res.Support.Helping, "、"))
				fmt.Fprintf(w, "忌：%s\n", strings.Join(res.Support.Weakening, "、"))
			})
		},
	}
}

func newLunarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lunar YYYY-MM-DD",
		Short: "Convert a Gregorian date to the lunar calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := calendar.ParseDate(args[0])
			if err != nil {
				return err
			}
			ld := calendar.ToLunar(d)
			return a.print(cmd.OutOrStdout(), ld, func(w io.Writer) {
				fmt.Fprintln(w, ld)
			})
		},
	}
}

func newStrokesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "strokes 字...",
		Short: "Look up stroke counts in the dictionary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chars, err := strokes.SplitCharacters(strings.Join(args, ","))
			if err != nil {
				return err
			}
			svc, done, err := a.service(true)
			if err != nil {
				return err
			}
			defer done()

			entries, err := svc.Strokes(cmd.Context(), chars)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), entries, func(w io.Writer) {
				fmt.Fprintln(w, strokes.Format(entries))
			})
		},
	}
}
