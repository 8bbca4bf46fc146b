package main

import "github.com/naka-gawa/github-approvers/cmd"

func main() {
	cmd.Execute()
}
