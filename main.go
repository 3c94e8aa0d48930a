package main

import "github.com/jmehdipour/email-dispatch/cmd"

func main() {
	cmd.Execute()
}
