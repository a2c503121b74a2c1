package main

import "github.com/papashirogane/chatbot/internal/cli"

func main() {
	cli.Execute()
}
