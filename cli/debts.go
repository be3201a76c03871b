package cli

import (
	"fmt"
	"time"

	"github.com/alecthomas/kong"
)

type DebtsCmd struct{}

func (cmd *DebtsCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	debts, total, err := s.tracker.Debts(s.ctx)
	if err != nil {
		return err
	}
	if len(debts) == 0 {
		printSuccess(s.stdout, "Nobody owes you anything")
		return nil
	}

	t := newTable("NAME", "OWES").alignRight(1)
	for _, d := range debts {
		t.add(d.Name, s.money(d.Amount))
	}
	t.footer = []string{"Total", s.money(total)}
	t.render(s.stdout)
	return nil
}

type DebtCmd struct {
	Name string `arg:"" help:"Person's name, as entered on the shared expenses."`
}

func (cmd *DebtCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	debts, total, err := s.tracker.DebtDetail(s.ctx, cmd.Name)
	if err != nil {
		return err
	}
	if len(debts) == 0 {
		printSuccess(s.stdout, fmt.Sprintf("%s owes you nothing", s.styles.Person(cmd.Name)))
		return nil
	}

	t := newTable("DATE", "EXPENSE", "REMAINING").alignRight(2)
	for _, d := range debts {
		t.add(d.Date.Format(time.DateOnly), d.Label, s.money(d.Remaining))
	}
	t.footer = []string{"", "Total", s.money(total)}
	t.render(s.stdout)
	return nil
}

type PayCmd struct {
	Name   string `arg:"" help:"Who paid you."`
	Amount Amount `arg:"" help:"Amount received."`
	Yes    bool   `short:"y" help:"Record the payment without asking, even when nothing is owed."`
}

func (cmd *PayCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if cmd.Amount.IsPositive() && !cmd.Yes {
		_, owed, err := s.tracker.DebtDetail(s.ctx, cmd.Name)
		if err != nil {
			return err
		}
		if !owed.IsPositive() {
			confirmed, err := promptYesNo(fmt.Sprintf("%s owes you nothing. Record %s as an advance payment?",
				cmd.Name, s.money(cmd.Amount.Decimal)))
			if err != nil {
				return err
			}
			if !confirmed {
				printError(s.stderr, fmt.Sprintf("%s owes you nothing, payment not recorded (use --yes to record it anyway)", cmd.Name))
				return NewCommandError(1)
			}
		}
	}

	payment, err := s.tracker.RecordPayment(s.ctx, cmd.Name, cmd.Amount.Decimal)
	if err != nil {
		return err
	}

	printSuccess(s.stdout, fmt.Sprintf("Recorded %s from %s",
		s.styles.Amount(s.money(payment.Settlement.Amount)), s.styles.Person(cmd.Name)))

	if len(payment.Allocations) > 0 {
		t := newTable("EXPENSE DATE", "ID", "SETTLED").alignRight(2)
		for _, a := range payment.Allocations {
			t.add(a.ExpenseDate.Format(time.DateOnly), shortID(a.ExpenseID), s.money(a.Amount))
		}
		t.render(s.stdout)
	}
	if payment.Unallocated.IsPositive() {
		printWarningf(s.stdout, "%s exceeded what %s owed and was not applied to any expense",
			s.money(payment.Unallocated), cmd.Name)
	}
	return nil
}

type SettlementsCmd struct {
	Name string `arg:"" optional:"" help:"Only show payments from this person."`
}

func (cmd *SettlementsCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	settlements, err := s.tracker.Settlements(s.ctx, cmd.Name)
	if err != nil {
		return err
	}
	if len(settlements) == 0 {
		printInfof(s.stdout, "No payments recorded")
		return nil
	}

	t := newTable("DATE", "FROM", "AMOUNT").alignRight(2)
	for _, st := range settlements {
		t.add(st.Date.Format(time.DateOnly), st.ParticipantName, s.money(st.Amount))
	}
	t.render(s.stdout)
	return nil
}
