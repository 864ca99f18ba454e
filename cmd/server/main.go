package main

import (
	"log"

	approuters "github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/app_routers"
	"github.com/FRONT-END-BOOTCAMP-PLUS-4/sik-share-server/internal/configuration"
)

func main() {
	container, err := configuration.BuildContainer()
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}

	// Ensure cleanup on shutdown
	defer container.Close()

	// Setup routers
	approuters.StartServer(container)
}
