package main

import (
	"github.com/chrisdamba/foodmatch/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// FOODMATCH_* variables may live in a local .env file
	_ = godotenv.Load()
	cmd.Execute()
}
