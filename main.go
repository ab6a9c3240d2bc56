package main

import "github.com/andrewpaige1/engcard-api/commands"

func main() {
	commands.Execute()
}
