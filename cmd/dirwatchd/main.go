package main

import "dirwatchd/cmd/dirwatchd/cmd"

func main() {
	cmd.Execute()
}
