package main

import (
	"log"

	_ "github.com/anoixa/photo-share/docs"

	"github.com/anoixa/photo-share/config"

	"github.com/anoixa/photo-share/cmd"
)

func main() {
	log.Printf("photo share %s", config.BuildString())
	cmd.Execute()
}
