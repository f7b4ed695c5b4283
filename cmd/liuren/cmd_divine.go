package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/liuren-api/internal/calendar"
	"github.com/zapponejosh/liuren-api/internal/divination"
	"github.com/zapponejosh/liuren-api/internal/strokes"
)

func newDivineCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "divine",
		Short: "Cast the three transmissions",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "numbers [--] N1 N2 N3",
			Short:   "Cast from three positive integers",
			Example: "  liuren divine numbers 6 6 2\n  liuren divine numbers -- -1 2 3",
			Args:    cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				var n [3]int
				for i, s := range args {
					v, err := strconv.Atoi(s)
					if err != nil {
						return fmt.Errorf("number %q is not an integer", s)
					}
					n[i] = v
				}
				svc, done, err := a.service(false)
				if err != nil {
					return err
				}
				defer done()

				res, err := svc.CastNumbers(n[0], n[1], n[2])
				if err != nil {
					return err
				}
				return a.printCast(cmd.OutOrStdout(), res)
			},
		},
		&cobra.Command{
			Use:   "date YYYY-MM-DD [HH:MM]",
			Short: "Cast from lunar month, lunar day and double-hour",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				clock := ""
				if len(args) == 2 {
					clock = args[1]
				}
				t, err := calendar.ParseDateTime(args[0], clock)
				if err != nil {
					return err
				}
				svc, done, err := a.service(false)
				if err != nil {
					return err
				}
				defer done()

				res, err := svc.CastDate(t)
				if err != nil {
					return err
				}
				return a.printCast(cmd.OutOrStdout(), res)
			},
		},
		&cobra.Command{
			Use:     "chars 字,字,字",
			Aliases: []string{"characters"},
			Short:   "Cast from the stroke counts of three characters",
			Args:    cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, done, err := a.service(true)
				if err != nil {
					return err
				}
				defer done()

				res, err := svc.CastCharacters(cmd.Context(), strings.Join(args, ","))
				if err != nil {
					return err
				}
				return a.printCast(cmd.OutOrStdout(), res)
			},
		},
	)
	return cmd
}

func (a *app) printCast(w io.Writer, res divination.Result) error {
	return a.print(w, res, func(w io.Writer) {
		if res.Lunar != nil {
			fmt.Fprintf(w, "农历：%s\n", res.Lunar)
		}
		if len(res.Strokes) > 0 {
			fmt.Fprintln(w, strokes.Format(res.Strokes))
		}
		fmt.Fprintf(w, "数字：%d %d %d\n\n", res.Inputs[0], res.Inputs[1], res.Inputs[2])
		fmt.Fprint(w, res.Summary)
	})
}
