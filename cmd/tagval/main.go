package main

import (
	"os"

	"github.com/funvibe/tagval/pkg/cli"
)

func main() {
	os.Exit(cli.Entry(os.Args[1:]))
}
