package main

import (
	"log"

	"github.com/thiagokokada/kaiten-timelog/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("kaiten-timelog: %v", err)
	}
}
