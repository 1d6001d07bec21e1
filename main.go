package main

import "github.com/devnullvoid/pvetui-stats/cmd"

func main() {
	cmd.Execute()
}
