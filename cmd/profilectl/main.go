package main

import (
	"os"

	"github.com/vytor/web3profile/cmd/profilectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
