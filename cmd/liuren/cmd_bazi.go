package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/liuren-api/internal/bazi"
	"github.com/zapponejosh/liuren-api/internal/calendar"
	"github.com/zapponejosh/liuren-api/internal/divination"
)

func newBaziCmd(a *app) *cobra.Command {
	var (
		gender string
		exact  bool
	)

	cmd := &cobra.Command{
		Use:   "bazi YYYY-MM-DD [HH:MM]",
		Short: "Profile the four pillars of a birth moment",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clock := ""
			if len(args) == 2 {
				clock = args[1]
			}
			birth, err := calendar.ParseDateTime(args[0], clock)
			if err != nil {
				return err
			}
			g, err := bazi.ParseGender(gender)
			if err != nil {
				return err
			}
			method := bazi.Simplified
			if exact {
				method = bazi.Exact
			}

			svc, done, err := a.service(false)
			if err != nil {
				return err
			}
			defer done()

			res, err := svc.Chart(birth, g, method)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), res, func(w io.Writer) { printChart(w, res) })
		},
	}

	f := cmd.Flags()
	f.StringVarP(&gender, "gender", "g", "M", "Gender (M/F, 男/女)")
	f.BoolVar(&exact, "exact", false, "Use solar-term pillars instead of the simplified formula")
	return cmd
}

func printChart(w io.Writer, res divination.ChartResult) {
	r := res.Report
	fmt.Fprintf(w, "公历：%s\n", res.Solar)
	fmt.Fprintf(w, "农历：%s\n", res.Lunar)
	fmt.Fprintf(w, "性别：%s\n", r.Gender)
	fmt.Fprintf(w, "生肖年：%s\n", r.ChineseYear)
	fmt.Fprintf(w, "八字：%s\n", r.Pillars)
	fmt.Fprintf(w, "五行：%s\n", r.ElementPairs)
	fmt.Fprintf(w, "日主：%s\n", r.DayMaster)
	fmt.Fprintf(w, "统计：%s\n", r.Counts)
	fmt.Fprintf(w, "%s\n", r.MissingImpact)
	fmt.Fprintf(w, "%s\n", r.StrengthRemark)
	fmt.Fprintf(w, "%s\n", r.SpouseRemark)
}
