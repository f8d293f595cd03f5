package main

import (
	"canvasdigest/cmd"
)

func main() {
	cmd.Execute()
}
