package main

import (
	"github.com/dimidumo/zkresidency/cli"
)

func main() {
	cli.Execute()
}
