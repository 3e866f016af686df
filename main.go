package main

import (
	"os"

	"github.com/asaidimu/go-adhquery/internal/cmd"
)

func main() {
	if err := cmd.NewRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
