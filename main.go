package main

import (
	"os"

	"github.com/rentfusion/rentfusion/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}
