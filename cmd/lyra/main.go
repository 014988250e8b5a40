package main

import "martianoff/lyra/cmd/lyra/commands"

func main() {
	commands.Execute()
}
