package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"github.com/warpdl/warpcrawl/cmd/common"
	"github.com/warpdl/warpcrawl/internal/api"
	"github.com/warpdl/warpcrawl/internal/daemon"
	"github.com/warpdl/warpcrawl/internal/server"
)

func serve(ctx *cli.Context) error {
	l, err := newLogger()
	if err != nil {
		common.PrintRuntimeErr(ctx, "serve", "logger", err)
		return nil
	}
	defer l.Close()
	if rpcSecret == "" {
		l.Warning("no --rpc-secret set, every RPC request will be rejected")
	}

	store, err := newSessionStore(l)
	if err != nil {
		common.PrintRuntimeErr(ctx, "serve", "session_store", err)
		return nil
	}
	opts, err := crawlerOptions(l, store)
	if err != nil {
		common.PrintRuntimeErr(ctx, "serve", "options", err)
		return nil
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := api.NewApi(sigCtx, api.Options{Logger: l, Registry: registry(), Base: opts})
	rpc := server.NewRPCServer(&server.RPCConfig{
		Secret:    rpcSecret,
		ListenAll: listenAll,
		Version:   currentBuildArgs.Version,
		Commit:    currentBuildArgs.Commit,
		BuildType: currentBuildArgs.BuildType,
	}, a, l)
	web := server.NewWebServer(l, rpc, port, listenAll)

	runner := daemon.New(&daemon.Config{ShutdownTimeout: DEF_SHUTDOWN_TIMEOUT}, daemon.Dependencies{
		Serve:   web.Start,
		Stop:    web.Shutdown,
		Cleanup: a.Close,
	})
	if err := runner.Run(sigCtx); err != nil {
		common.PrintRuntimeErr(ctx, "serve", "run", err)
	}
	l.Info("stopped")
	return nil
}
