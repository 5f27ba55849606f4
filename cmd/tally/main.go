package main

import "github.com/tallyocr/tally/cmd/tally/cmd"

func main() {
	cmd.Execute()
}
