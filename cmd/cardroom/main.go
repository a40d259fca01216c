package main

import (
	"github.com/dwalters/cardroom/internal/cli"
)

func main() {
	cli.Execute()
}
