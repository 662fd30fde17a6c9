package main

import (
	"fmt"
	"os"
)

// @title SMA ADP Admin API
// @version 1.0.0
// @description Account and invitation management for the admin console
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
