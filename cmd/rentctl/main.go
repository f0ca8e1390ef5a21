// Command rentctl is the TransportEase terminal client.
//
//	rentctl login --email asha@example.com --password 'secret1!' [--owner]
//	rentctl vehicles --city Mumbai --type car --max-price 20
//	rentctl quote --distance 120 --vehicle 42
//	rentctl book --vehicle 42 --pickup Andheri --drop Pune --distance 150
package main

import (
	"fmt"
	"os"

	"github.com/ukydev/transportease/cmd/rentctl/command"
	"github.com/ukydev/transportease/internal/config"
)

func main() {
	config.LoadEnvFiles()
	if err := command.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
