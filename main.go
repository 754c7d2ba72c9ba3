// main is the entry point for the witdiff CLI.
package main

import (
	"github.com/huangsam/witdiff/cmd"
	"github.com/huangsam/witdiff/internal/contract"
	"github.com/huangsam/witdiff/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("Error", err)
	}
}
