package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional; a missing one is not an error.
	_ = godotenv.Load()

	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
