package main

import (
	"log"

	"github.com/joho/godotenv"

	"paperrag/internal/cli"
)

func main() {
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
