package main

import "task-sync.com/task-sync/cmd"

func main() {
	cmd.Execute()
}
