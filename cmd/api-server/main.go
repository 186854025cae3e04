package main

import (
	"flag"
	"log"

	"github.com/dnzakizamani/simple-login/internal/app"
)

func main() {
	cfgPath := flag.String("config", "", "配置文件路径（默认 config/config.yaml）")
	flag.Parse()

	application, err := app.Initialize(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	application.Run()
}
