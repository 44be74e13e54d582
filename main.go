// main is the entry point for the branchspot CLI.
package main

import (
	"os"

	"github.com/huangsam/branchspot/cmd"
	"github.com/huangsam/branchspot/internal/contract"
	"github.com/huangsam/branchspot/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()
	iocache.CloseStores()
	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}
	if err != nil {
		contract.Logger.WithError(err).Error("branchspot failed")
		os.Exit(1)
	}
}
