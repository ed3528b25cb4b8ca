package main

import "github.com/Govind-619/JewelSphere/cli"

func main() {
	cli.Execute()
}
