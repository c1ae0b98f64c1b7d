package main

import (
	"github.com/veristry/veristry/cmd/veristry/cmd"
)

func main() {
	cmd.Execute()
}
