package main

import (
	"log"

	"cribscore/internal/server"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	if err := server.Run(); err != nil {
		log.Fatal(err.Error())
	}
}
