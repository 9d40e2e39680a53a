package main

import "github.com/stylemirror/stylemirror/cmd"

func main() {
	cmd.Execute()
}
