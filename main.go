package main

import (
	_ "time/tzdata"

	"github.com/jjenkins/agencydash/cmd"
)

func main() {
	cmd.Execute()
}
