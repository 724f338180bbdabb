package main

import (
	"os"

	"github.com/erpdesk/sessiond/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
