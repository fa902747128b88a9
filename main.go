package main

import "github.com/user/codereview-adk/cmd"

func main() {
	cmd.Execute()
}
