package main

import (
	"os"

	"budget/commands"
)

// @title Budget API
// @version 1.0
// @description Personal budget tracker: transactions, monthly balances, categories and exports.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
