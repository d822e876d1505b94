package main

import (
	"fmt"
	"os"

	"github.com/dmitrijs2005/taxportal/internal/admin"
)

func main() {
	if err := admin.NewRootCommand(os.Stdout, admin.OpenConfiguredStore).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
