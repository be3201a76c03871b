package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/kharchamitra/kharcha/tracker"
)

type AnalysisCmd struct {
	Months int `short:"n" default:"6" help:"Number of months in the trend and category totals."`
}

func (cmd *AnalysisCmd) Run(ctx *kong.Context, globals *Globals) error {
	if cmd.Months <= 0 {
		cmd.Months = tracker.DefaultTrendMonths
	}

	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	a, err := s.tracker.Analysis(s.ctx, cmd.Months)
	if err != nil {
		return err
	}
	w := s.stdout

	printHeading(w, "This month by type")
	if len(a.Breakdown) == 0 {
		printInfof(w, "No expenses this month")
	} else {
		t := newTable("TYPE", "NET").alignRight(1)
		for _, b := range a.Breakdown {
			t.add(b.Type.String(), s.money(b.Amount))
		}
		t.render(w)
	}

	printHeading(w, "Recurring and one-time")
	printFields(w, [][2]string{
		{"Recurring", s.money(a.Split.Recurring)},
		{"One-time", s.money(a.Split.OneTime)},
		{"Velocity", fmt.Sprintf("%s/day of %s/day, %s",
			s.money(a.Velocity.DailyRate), s.money(a.Velocity.TargetRate), velocityLabel(a.Velocity.Status))},
	})

	printHeading(w, fmt.Sprintf("Last %d months", a.Months))
	trend := newTable("MONTH", "SPENT").alignRight(1)
	for _, m := range a.Trend {
		trend.add(m.Month.Format("Jan 2006"), s.money(m.Amount))
	}
	trend.render(w)

	if len(a.CategoryTotals) > 0 {
		printHeading(w, "Categories")
		t := newTable("CATEGORY", "TYPE", "SPENT").alignRight(2)
		for _, c := range a.CategoryTotals {
			t.add(c.Name, c.Type.String(), s.money(c.Amount))
		}
		t.render(w)
	}

	if len(a.Shares.Participants) > 0 {
		printHeading(w, "Shared with others")
		t := newTable("NAME", "SHARED", "PAID", "BALANCE").alignRight(1, 2, 3)
		for _, p := range a.Shares.Participants {
			t.add(p.Name, s.money(p.TotalShared), s.money(p.TotalPaid), s.money(p.Net()))
		}
		t.footer = []string{"Total", s.money(a.Shares.TotalLent), s.money(a.Shares.TotalRecovered),
			s.money(a.Shares.TotalLent.Sub(a.Shares.TotalRecovered))}
		t.render(w)
	}
	return nil
}
