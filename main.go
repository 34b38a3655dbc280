package main

import "github.com/diogo/gemchat/internal/commands"

func main() {
	commands.Execute()
}
