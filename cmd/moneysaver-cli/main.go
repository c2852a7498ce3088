package main

import (
	"github.com/joho/godotenv"

	"moneysaver/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
