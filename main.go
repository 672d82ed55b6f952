package main

import "github.com/massiben/rh-backend/cmd"

func main() {
	cmd.Execute()
}
