package main

import "github.com/maperezv/staff-attendance/cmd"

func main() {
	cmd.Execute()
}
