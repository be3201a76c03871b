package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Config    string `help:"Config file (defaults to $XDG_CONFIG_HOME/kharcha/config.toml)." type:"path" env:"KHARCHA_CONFIG"`
	DB        string `help:"Ledger database, overrides the config." name:"db" type:"path"`
	LogLevel  string `help:"Log level: debug, info, warn or error." name:"log-level"`
	Telemetry bool   `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Status      StatusCmd      `cmd:"" default:"1" help:"Show this month's budget, saving buffer and money owed."`
	Expense     ExpenseCmd     `cmd:"" help:"Add, list and delete expenses."`
	Debts       DebtsCmd       `cmd:"" help:"List everyone who owes you money."`
	Debt        DebtCmd        `cmd:"" help:"Show the unpaid shares of one person."`
	Pay         PayCmd         `cmd:"" help:"Record a payment received from someone."`
	Settlements SettlementsCmd `cmd:"" help:"Show the payment history."`
	Limit       LimitCmd       `cmd:"" help:"Set the monthly expense limit."`
	Recurring   RecurringCmd   `cmd:"" help:"Manage recurring expense templates."`
	Category    CategoryCmd    `cmd:"" help:"Manage categories."`
	Analysis    AnalysisCmd    `cmd:"" help:"Spending analysis over recent months."`
	Serve       ServeCmd       `cmd:"" help:"Start the JSON API server."`
}
