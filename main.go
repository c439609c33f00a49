package main

import "github.com/vibast-solutions/ms-go-reservations/cmd"

func main() {
	cmd.Execute()
}
