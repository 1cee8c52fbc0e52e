package main

import (
	"github.com/dyike/FundaGo/internal/cli"
)

func main() {
	cli.Run()
}
