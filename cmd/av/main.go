package main

import (
	"log"

	"atomvault/cmd/av/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		log.Fatal(err)
	}
}
