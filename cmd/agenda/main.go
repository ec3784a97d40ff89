package main

import (
	"context"
	"log"
	"os"

	"agenda/pkg/agenda"
)

func main() {
	if err := agenda.Main(context.Background(), os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
