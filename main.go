package main

import "cardgrader/cmd"

func main() {
	cmd.Execute()
}
