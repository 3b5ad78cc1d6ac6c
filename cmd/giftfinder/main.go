package main

import (
	"giftfinder/cmd/handlers"
	"giftfinder/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
