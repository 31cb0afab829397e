package main

import "github.com/iliyamo/parking-reservation/cmd/server/command"

func main() {
	command.Execute()
}
