package main

import (
	"fmt"
	"os"

	"github.com/bierclub/bier/internal/ctl"
)

func main() {
	if err := ctl.Run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
