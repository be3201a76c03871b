package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/kharchamitra/kharcha/config"
	"github.com/kharchamitra/kharcha/web"
)

type ServeCmd struct {
	Host     string `help:"Interface to bind, overrides the config."`
	Port     int    `help:"Port to listen on, overrides the config."`
	ReadOnly bool   `help:"Reject payments and other writes." short:"r"`
}

func (cmd *ServeCmd) Run(ctx *kong.Context, globals *Globals) error {
	s, err := globals.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	webCfg := s.cfg.Web
	if cmd.Host != "" {
		webCfg.Host = cmd.Host
	}
	if cmd.Port != 0 {
		webCfg.Port = cmd.Port
	}

	version := Version
	if version == "" {
		version = "dev"
	}
	commitSHA := CommitSHA
	if commitSHA == "" {
		commitSHA = "local"
	}

	server := web.NewWithVersion(s.tracker, webCfg.Host, webCfg.Port, version, commitSHA)
	server.ReadOnly = cmd.ReadOnly || webCfg.ReadOnly
	server.SetCurrency(s.cfg.Budget.Currency)

	configPath := globals.Config
	if configPath == "" {
		configPath = config.Path()
	}
	if _, err := os.Stat(configPath); err == nil {
		server.ConfigPath = configPath
	}

	printInfof(s.stdout, "Starting server on http://%s", webCfg.Addr())
	if st, ok := s.store.(interface{ Path() string }); ok {
		printInfof(s.stdout, "Serving ledger: %s", pathStyle.Render(st.Path()))
	}
	if server.ReadOnly {
		printInfof(s.stdout, "Server running in READ-ONLY mode")
	}

	runCtx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Start(runCtx)
}
