package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"

	"github.com/kharchamitra/kharcha/budget"
)

type StatusCmd struct{}

func (cmd *StatusCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	d, err := s.tracker.Dashboard(s.ctx)
	if err != nil {
		return err
	}
	sum := d.Summary

	progress := sum.Progress().Mul(decimal.NewFromInt(100)).Round(0)
	_, _ = fmt.Fprintln(s.stdout, headingStyle.Render(sum.Month.Format("January 2006")))
	printFields(s.stdout, [][2]string{
		{"Limit", s.money(sum.ExpenseLimit)},
		{"Spent", fmt.Sprintf("%s (%s%%)", s.money(sum.LimitSpend), progress)},
		{"Left", s.styles.Balance(sum.LimitLeft, s.cfg.Budget.Currency)},
		{"Safe to spend", s.styles.Balance(sum.SafeLimit, s.cfg.Budget.Currency)},
		{"Net cash flow", s.money(sum.NetCashFlow)},
		{"Saving buffer", s.styles.Amount(s.money(sum.SavingBuffer))},
		{"Velocity", fmt.Sprintf("%s/day of %s/day, %s",
			s.money(d.Velocity.DailyRate), s.money(d.Velocity.TargetRate), velocityLabel(d.Velocity.Status))},
		{"Owed to you", s.money(d.TotalOwed)},
	})

	if projected := sum.LastMonthRecurring.Sub(sum.ThisMonthRecurring); projected.IsPositive() {
		printInfof(s.stdout, "%s of recurring charges still expected this month", s.money(projected))
	}
	if sum.LimitLeft.IsNegative() {
		printWarningf(s.stdout, "Over the monthly limit by %s", s.money(sum.LimitLeft.Neg()))
	}
	return nil
}

func velocityLabel(status budget.VelocityStatus) string {
	switch status {
	case budget.OnTrack:
		return successStyle.Render("on track")
	case budget.Warning:
		return warningStyle.Render("slightly fast")
	}
	return errorStyle.Render("too fast")
}

type LimitCmd struct {
	Amount Amount `arg:"" help:"New monthly expense limit."`
}

func (cmd *LimitCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	settings, err := s.tracker.SetLimit(s.ctx, cmd.Amount.Decimal)
	if err != nil {
		return err
	}
	printSuccess(s.stdout, fmt.Sprintf("Monthly limit set to %s", s.money(settings.ExpenseLimit)))
	return nil
}
