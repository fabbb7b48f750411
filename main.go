package main

import "github.com/holinflow/hflow/cmd"

func main() {
	cmd.Execute()
}
