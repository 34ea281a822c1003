package main

import (
	"os"

	"github.com/platinummonkey/cstyle/pkg/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
