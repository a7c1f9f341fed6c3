// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/meshly/stakemesh/api"
	"github.com/meshly/stakemesh/authority"
	"github.com/meshly/stakemesh/log"
	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/metrics"
	"github.com/meshly/stakemesh/staking"
	"github.com/meshly/stakemesh/state"
	"github.com/meshly/stakemesh/token"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

// component addresses inside the ledger state
var (
	tokenAddress     = mesh.BytesToAddress([]byte("token"))
	authorityAddress = mesh.BytesToAddress([]byte("authority"))
	stakingAddress   = mesh.BytesToAddress([]byte("staking"))
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "StakeMesh",
		Usage:     "Token staking accounting service",
		Copyright: "2026 The StakeMesh developers",
		Flags: []cli.Flag{
			dataDirFlag,
			memDBFlag,
			adminFlag,
			apiAddrFlag,
			apiCorsFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	db, err := openLedgerDB(ctx)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing ledger database..."); db.Close() }()

	st := state.New(db)
	auth := authority.New(authorityAddress, st)
	tok := token.New(tokenAddress, st)
	eng := staking.New(stakingAddress, st, tok, auth)

	if hexAdmin := ctx.String(adminFlag.Name); hexAdmin != "" {
		admin, err := mesh.ParseAddress(hexAdmin)
		if err != nil {
			return err
		}
		if err := auth.Init(*admin); err != nil {
			return err
		}
		if err := st.Commit(); err != nil {
			return err
		}
	}

	apiHandler := api.New(eng, api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
	})
	apiSrv, apiURL, err := startAPIServer(ctx.String(apiAddrFlag.Name), apiHandler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); apiSrv.Shutdown(context.Background()) }()

	logger.Info("API server started", "url", apiURL, "version", fullVersion())

	<-handleExitSignal()
	logger.Info("exit signal received")
	return st.Commit()
}
