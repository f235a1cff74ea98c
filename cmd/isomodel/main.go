// Command isomodel runs ISO 13790 building energy simulations.
package main

import (
	"os"

	"github.com/chrissnell/isomodel/internal/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Errorf("%v", err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}
