package main

import "github.com/mchmarny/topicpredict/pkg/cli"

func main() {
	cli.Execute()
}
