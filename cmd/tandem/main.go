package main

import "github.com/okian/tandem/cmd/tandem/cmd"

func main() {
	cmd.Execute()
}
