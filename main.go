package main

import (
	"os"

	"github.com/smazurov/pcmcap/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
