package main

import (
	"os"

	"github.com/brightside-ai/assistant-backend/assistantservice"
)

func main() {
	if err := assistantservice.Run(); err != nil {
		os.Exit(1)
	}
}
