// cmd/redditwatch/main.go

package main

import (
	"os"

	"redditwatch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
