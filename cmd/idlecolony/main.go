package main

import (
	"github.com/andrescamacho/idlecolony-go/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
