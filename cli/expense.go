package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/kharchamitra/kharcha/tracker"
)

type ExpenseCmd struct {
	Add    ExpenseAddCmd    `cmd:"" help:"Add an expense."`
	List   ExpenseListCmd   `cmd:"" help:"List the expenses of a month."`
	Delete ExpenseDeleteCmd `cmd:"" help:"Delete an expense and its shares."`
}

type ExpenseAddCmd struct {
	Amount    Amount   `arg:"" help:"Amount spent."`
	Reason    string   `short:"r" help:"What it was for."`
	Category  string   `short:"c" help:"Category name."`
	Date      Date     `short:"d" help:"Date of the expense (YYYY-MM-DD), defaults to today."`
	Share     []string `short:"s" sep:"none" placeholder:"NAME=AMOUNT" help:"Share the expense with someone. Repeatable."`
	Recurring bool     `help:"Mark the expense as recurring."`
}

func (cmd *ExpenseAddCmd) Run(ctx *kong.Context, globals *Globals) error {
	shares, err := parseShares(cmd.Share)
	if err != nil {
		return err
	}

	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	e, err := s.tracker.AddExpense(s.ctx, tracker.ExpenseInput{
		Amount:    cmd.Amount.Decimal,
		Date:      cmd.Date.Time,
		Category:  cmd.Category,
		Reason:    cmd.Reason,
		Recurring: cmd.Recurring,
		Shares:    shares,
	})
	if err != nil {
		return err
	}

	printSuccess(s.stdout, fmt.Sprintf("Added %s for %s on %s %s",
		s.styles.Amount(s.money(e.Amount)), e.Label(), e.Date.Format(time.DateOnly), s.styles.Dim(shortID(e.ID))))
	for _, p := range e.Participants {
		printInfof(s.stdout, "%s owes %s", s.styles.Person(p.Name), s.money(p.AmountOwed))
	}
	return nil
}

// parseShares parses NAME=AMOUNT pairs. The last '=' separates the amount so names may
// contain one.
func parseShares(raw []string) ([]tracker.ShareInput, error) {
	shares := make([]tracker.ShareInput, 0, len(raw))
	for _, r := range raw {
		i := strings.LastIndex(r, "=")
		if i < 0 {
			return nil, fmt.Errorf("invalid share %q, expected NAME=AMOUNT", r)
		}
		amount, err := parseAmount(r[i+1:])
		if err != nil {
			return nil, fmt.Errorf("invalid share %q: %w", r, err)
		}
		shares = append(shares, tracker.ShareInput{Name: strings.TrimSpace(r[:i]), Amount: amount})
	}
	return shares, nil
}

type ExpenseListCmd struct {
	Month Month `short:"m" help:"Month to list (YYYY-MM), defaults to the current month."`
}

func (cmd *ExpenseListCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	month := orNow(cmd.Month.Time, s.tracker.Now())
	expenses, err := s.tracker.ListExpenses(s.ctx, month)
	if err != nil {
		return err
	}
	if len(expenses) == 0 {
		printInfof(s.stdout, "No expenses in %s", month.Format("January 2006"))
		return nil
	}

	t := newTable("DATE", "ID", "EXPENSE", "TYPE", "AMOUNT", "SHARED").alignRight(4)
	for _, e := range expenses {
		typ := "-"
		if ct, ok := e.CategoryType(); ok {
			typ = ct.String()
		}
		shared := ""
		if e.IsShared {
			names := make([]string, 0, len(e.Participants))
			for _, p := range e.Participants {
				names = append(names, p.Name)
			}
			shared = strings.Join(names, ", ")
		}
		t.add(e.Date.Format(time.DateOnly), shortID(e.ID), e.Label(), typ, s.money(e.Amount), shared)
	}
	t.render(s.stdout)
	return nil
}

type ExpenseDeleteCmd struct {
	ID string `arg:"" help:"Expense ID."`
}

func (cmd *ExpenseDeleteCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.resolveExpenseID(cmd.ID)
	if err != nil {
		return err
	}
	if err := s.tracker.DeleteExpense(s.ctx, id); err != nil {
		return err
	}
	printSuccess(s.stdout, fmt.Sprintf("Deleted expense %s", shortID(id)))
	return nil
}

type CategoryCmd struct {
	Add  CategoryAddCmd  `cmd:"" help:"Add a category."`
	List CategoryListCmd `cmd:"" help:"List categories."`
}

type CategoryAddCmd struct {
	Name  string `arg:"" help:"Category name."`
	Type  string `short:"t" default:"need" enum:"need,want,utr" help:"Budget type: need, want or utr (never counts against the limit)."`
	Icon  string `help:"Icon shown by front ends."`
	Color string `help:"Color shown by front ends."`
}

func (cmd *CategoryAddCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := s.tracker.AddCategory(s.ctx, cmd.Name, cmd.Type, cmd.Icon, cmd.Color)
	if err != nil {
		return err
	}
	printSuccess(s.stdout, fmt.Sprintf("Added category %s (%s)", s.styles.Keyword(c.Name), c.Type))
	return nil
}

type CategoryListCmd struct{}

func (cmd *CategoryListCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	categories, err := s.tracker.Categories(s.ctx)
	if err != nil {
		return err
	}
	if len(categories) == 0 {
		printInfof(s.stdout, "No categories yet, add one with `kharcha category add`")
		return nil
	}

	t := newTable("NAME", "TYPE", "ICON")
	for _, c := range categories {
		t.add(c.Name, c.Type.String(), c.Icon)
	}
	t.render(s.stdout)
	return nil
}
