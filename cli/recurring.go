package cli

import (
	"fmt"
	"time"

	"github.com/alecthomas/kong"
)

type RecurringCmd struct {
	Add    RecurringAddCmd    `cmd:"" help:"Add a recurring expense template."`
	List   RecurringListCmd   `cmd:"" help:"List recurring expense templates."`
	Delete RecurringDeleteCmd `cmd:"" help:"Delete a template. Expenses already spawned are kept."`
	Spawn  RecurringSpawnCmd  `cmd:"" help:"Create this month's expense from a template."`
}

type RecurringAddCmd struct {
	Amount   Amount `arg:"" help:"Amount charged every month."`
	Reason   string `arg:"" help:"What the charge is for."`
	Category string `short:"c" help:"Category name."`
}

func (cmd *RecurringAddCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	tmpl, err := s.tracker.AddTemplate(s.ctx, cmd.Amount.Decimal, cmd.Reason, cmd.Category)
	if err != nil {
		return err
	}
	printSuccess(s.stdout, fmt.Sprintf("Added recurring %s of %s %s",
		s.styles.Keyword(tmpl.Reason), s.money(tmpl.Amount), s.styles.Dim(shortID(tmpl.ID))))
	return nil
}

type RecurringListCmd struct{}

func (cmd *RecurringListCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	templates, err := s.tracker.Templates(s.ctx)
	if err != nil {
		return err
	}
	if len(templates) == 0 {
		printInfof(s.stdout, "No recurring templates")
		return nil
	}

	t := newTable("ID", "REASON", "CATEGORY", "AMOUNT").alignRight(3)
	for _, tmpl := range templates {
		category := "-"
		if tmpl.Category != nil {
			category = tmpl.Category.Name
		}
		t.add(shortID(tmpl.ID), tmpl.Reason, category, s.money(tmpl.Amount))
	}
	t.render(s.stdout)
	return nil
}

type RecurringDeleteCmd struct {
	ID string `arg:"" help:"Template ID or a unique prefix of it."`
}

func (cmd *RecurringDeleteCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.resolveTemplateID(cmd.ID)
	if err != nil {
		return err
	}
	if err := s.tracker.DeleteTemplate(s.ctx, id); err != nil {
		return err
	}
	printSuccess(s.stdout, fmt.Sprintf("Deleted template %s", shortID(id)))
	return nil
}

type RecurringSpawnCmd struct {
	ID   string `arg:"" help:"Template ID or a unique prefix of it."`
	Date Date   `short:"d" help:"Date of the expense (YYYY-MM-DD), defaults to today."`
}

func (cmd *RecurringSpawnCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.resolveTemplateID(cmd.ID)
	if err != nil {
		return err
	}
	e, err := s.tracker.SpawnRecurring(s.ctx, id, cmd.Date.Time)
	if err != nil {
		return err
	}
	printSuccess(s.stdout, fmt.Sprintf("Added %s for %s on %s",
		s.styles.Amount(s.money(e.Amount)), e.Label(), e.Date.Format(time.DateOnly)))
	return nil
}
