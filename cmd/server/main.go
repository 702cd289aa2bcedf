package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/godilite/commhealth/internal/cli"
)

func main() {
	_ = godotenv.Load(".env")

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
