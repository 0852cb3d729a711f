package main

import (
	"github.com/joho/godotenv"

	"ragchat/internal/cli"
)

func main() {
	_ = godotenv.Load()

	cli.Execute()
}
