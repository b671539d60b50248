package main

import (
	"log"

	"github.com/joho/godotenv"

	"minecraft-codegen/internal/commands"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	commands.Execute()
}
