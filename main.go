package main

import (
	"github.com/luma/boingscope/cmd"
)

func main() {
	cmd.Execute()
}
