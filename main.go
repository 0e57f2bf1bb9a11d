package main

import (
	"github.com/gin-gonic/gin"

	"pixelframe/api"
)

func main() {
	args := ParseArgs()
	if !args.Validate() {
		panic("missing arguments")
	}
	server, err := api.NewServer(args.ServerConfig)
	if err != nil {
		panic(err)
	}
	defer server.Close()
	server.Start()

	router := gin.Default()
	api.RegisterHandlers(router, server)
	if err := router.Run(args.ServerURL); err != nil {
		panic(err)
	}
}
