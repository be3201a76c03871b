package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/kharchamitra/kharcha/cli"
	"github.com/kharchamitra/kharcha/config"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""

	app struct {
		Version kong.VersionFlag `help:"Show version information"`
		cli.Commands
	}
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		os.Exit(cli.ReportError(os.Stderr, err))
	}

	cli.Version = Version
	cli.CommitSHA = CommitSHA

	ctx := kong.Parse(&app,
		kong.Vars{
			"version": buildVersion(),
		},
		kong.Name("kharcha"),
		kong.Description("Track expenses, money owed to you and a monthly budget that rolls savings forward."),
		kong.UsageOnError(),
		kong.Bind(&app.Globals),
	)

	os.Exit(cli.ReportError(os.Stderr, ctx.Run()))
}

func buildVersion() string {
	if Version == "" {
		Version = "dev"
	}
	if CommitSHA == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, CommitSHA)
}
