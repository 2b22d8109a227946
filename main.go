package main

import "github.com/qrave1/CallRelay/cmd"

func main() {
	cmd.Execute()
}
