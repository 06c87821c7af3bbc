package main

import "github.com/anams/page-server/page-server/cmd"

func main() {
	cmd.Execute()
}
