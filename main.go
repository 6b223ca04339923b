package main

import "github.com/jobbers/jobbers/cmd"

func main() {
	cmd.Execute()
}
