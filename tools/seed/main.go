// Demo Ledger Generator
//
// This tool fills a kharcha database with a realistic history for demos and for
// profiling the dashboard and analysis queries. It walks day by day through the
// requested number of months, spawning recurring bills, adding everyday expenses,
// splitting some of them with friends and recording their repayments. The tracker
// clock follows the walk, so the saving buffer rolls forward as it would in real use.
//
// Usage:
//
//	go run ./tools/seed demo.db
//	go run ./tools/seed --months 36 --seed 7 demo.db
package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"

	"github.com/kharchamitra/kharcha/budget"
	"github.com/kharchamitra/kharcha/logging"
	"github.com/kharchamitra/kharcha/store/sqlite"
	"github.com/kharchamitra/kharcha/tracker"
)

var (
	categories = []struct {
		name, typ, icon string
	}{
		{"Groceries", "need", "🛒"},
		{"Rent", "need", "🏠"},
		{"Utilities", "need", "💡"},
		{"Transport", "utr", "🚕"},
		{"Dining", "want", "🍜"},
		{"Entertainment", "want", "🎬"},
		{"Shopping", "want", "🛍"},
	}

	templates = []struct {
		amount, reason, category string
	}{
		{"1200", "Rent share", "Rent"},
		{"149", "Streaming", "Entertainment"},
		{"399", "Phone and internet", "Utilities"},
	}

	reasons = map[string][]string{
		"Groceries":     {"Vegetables", "Weekly groceries", "Milk and bread", "Fruit"},
		"Transport":     {"Cab", "Metro card", "Auto", "Fuel"},
		"Dining":        {"Lunch", "Dinner out", "Coffee", "Street food"},
		"Entertainment": {"Movie", "Concert", "Board game night"},
		"Shopping":      {"Shoes", "Books", "Headphones", "Gift"},
	}

	friends = []string{"Sam", "Alex", "Priya", "Kim"}
)

var args struct {
	DB     string `arg:"" help:"Database file to create or extend." type:"path"`
	Months int    `help:"Number of months of history." default:"12"`
	Limit  string `help:"Monthly expense limit." default:"2000"`
	Seed   uint64 `help:"Random seed." default:"1"`
}

func main() {
	kong.Parse(&args, kong.Name("seed"), kong.Description("Generate a demo kharcha ledger."))

	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	logger, err := logging.Setup(os.Stderr, "warn")
	if err != nil {
		return err
	}

	limit, err := decimal.NewFromString(args.Limit)
	if err != nil {
		return fmt.Errorf("invalid limit %q: %w", args.Limit, err)
	}

	st, err := sqlite.New(args.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	rng := rand.New(rand.NewPCG(args.Seed, args.Seed))
	end := time.Now()
	clock := budget.AddMonths(end, -args.Months)

	tr := tracker.New(st,
		tracker.WithClock(func() time.Time { return clock }),
		tracker.WithLogger(logger),
		tracker.WithDefaultLimit(limit),
	)

	if _, _, err := tr.Activate(ctx); err != nil {
		return err
	}
	for _, c := range categories {
		if _, err := tr.AddCategory(ctx, c.name, c.typ, c.icon, ""); err != nil {
			return err
		}
	}
	var templateIDs []string
	for _, t := range templates {
		tmpl, err := tr.AddTemplate(ctx, decimal.RequireFromString(t.amount), t.reason, t.category)
		if err != nil {
			return err
		}
		templateIDs = append(templateIDs, tmpl.ID)
	}

	expenseCount, paymentCount := 0, 0
	for ; clock.Before(end); clock = clock.AddDate(0, 0, 1) {
		if clock.Day() == 1 {
			if _, _, err := tr.Activate(ctx); err != nil {
				return err
			}
			for _, id := range templateIDs {
				if _, err := tr.SpawnRecurring(ctx, id, clock); err != nil {
					return err
				}
				expenseCount++
			}
		}

		for range rng.IntN(3) {
			if _, err := tr.AddExpense(ctx, randomExpense(rng, clock)); err != nil {
				return err
			}
			expenseCount++
		}

		// Friends settle up now and then, sometimes partially, sometimes too much.
		if rng.IntN(10) == 0 {
			paid, err := settleUp(ctx, tr, rng)
			if err != nil {
				return err
			}
			if paid {
				paymentCount++
			}
		}
	}

	settings, rollover, err := tr.Activate(ctx)
	if err != nil {
		return err
	}
	_, owed, err := tr.Debts(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Generated %d expenses and %d payments over %d months in %s\n",
		expenseCount, paymentCount, args.Months, args.DB)
	fmt.Fprintf(os.Stderr, "Saving buffer %s (last activation credited %s), owed to you %s\n",
		settings.SavingBuffer.StringFixed(2), rollover.Credited().StringFixed(2), owed.StringFixed(2))
	return nil
}

func randomExpense(rng *rand.Rand, date time.Time) tracker.ExpenseInput {
	category := categories[rng.IntN(len(categories))].name
	if category == "Rent" || category == "Utilities" {
		category = "Groceries"
	}
	options := reasons[category]

	in := tracker.ExpenseInput{
		Amount:   randAmount(rng, 20, 600),
		Date:     date,
		Category: category,
		Reason:   options[rng.IntN(len(options))],
	}

	if category == "Dining" || category == "Entertainment" {
		if rng.IntN(2) == 0 {
			n := rng.IntN(2) + 1
			share := in.Amount.Div(decimal.NewFromInt(int64(n + 1))).Round(2)
			for _, i := range rng.Perm(len(friends))[:n] {
				in.Shares = append(in.Shares, tracker.ShareInput{Name: friends[i], Amount: share})
			}
		}
	}
	return in
}

// settleUp records a payment from a random friend who owes something. It pays the debt
// in full most of the time.
func settleUp(ctx context.Context, tr *tracker.Tracker, rng *rand.Rand) (bool, error) {
	debts, _, err := tr.Debts(ctx)
	if err != nil || len(debts) == 0 {
		return false, err
	}
	debt := debts[rng.IntN(len(debts))]

	amount := debt.Amount
	switch rng.IntN(5) {
	case 0:
		amount = amount.Div(decimal.NewFromInt(2)).Round(2)
	case 1:
		amount = amount.Add(decimal.NewFromInt(50))
	}
	if !amount.IsPositive() {
		return false, nil
	}

	if _, err := tr.RecordPayment(ctx, debt.Name, amount); err != nil {
		return false, err
	}
	return true, nil
}

func randAmount(rng *rand.Rand, min, max int) decimal.Decimal {
	paise := int64(min*100 + rng.IntN((max-min)*100))
	return decimal.New(paise, -2)
}
