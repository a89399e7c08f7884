package main

import (
	"log"

	"github.com/foaademad/event-test/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		log.Fatal(err)
	}
}
