// Code scaffolded by goctl. Safe to edit.
package main

import (
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/rest"

	"github.com/meridianpay/authgateway/cmd/backend/internal/config"
	"github.com/meridianpay/authgateway/cmd/backend/internal/handler"
	"github.com/meridianpay/authgateway/cmd/backend/internal/svc"
	"github.com/meridianpay/authgateway/internal/wireerr"
)

var configFile = flag.String("f", "etc/backend.yaml", "the config file")

func main() {
	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c)

	wireerr.Register()

	server := rest.MustNewServer(c.RestConf)
	defer server.Stop()

	svcCtx := svc.NewServiceContext(c)
	handler.RegisterHandlers(server, svcCtx)

	fmt.Printf("Starting backend verification service at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
