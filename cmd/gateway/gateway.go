// Code scaffolded by goctl. Safe to edit.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest"

	"github.com/meridianpay/authgateway/cmd/gateway/internal/config"
	"github.com/meridianpay/authgateway/cmd/gateway/internal/handler"
	"github.com/meridianpay/authgateway/cmd/gateway/internal/svc"
	"github.com/meridianpay/authgateway/internal/authsvc"
	"github.com/meridianpay/authgateway/internal/cache"
	"github.com/meridianpay/authgateway/internal/secretstore"
	"github.com/meridianpay/authgateway/internal/wireerr"
)

var configFile = flag.String("f", "etc/gateway.yaml", "the config file")

func main() {
	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c)

	wireerr.Register()

	ctx := context.Background()

	store, err := secretstore.NewVaultStore(ctx, c.Vault.ToStoreConfig())
	if err != nil {
		logx.Must(err)
	}
	if err := store.Authenticate(ctx); err != nil {
		logx.Must(err)
	}

	ca, err := cache.NewRedisCache(c.Redis.ToCacheConfig())
	if err != nil {
		logx.Must(err)
	}

	db := svc.MustConnectPostgres(ctx, c)
	forwarder := authsvc.NewHTTPForwarder(c.Backend.BaseURL)

	svcCtx := svc.NewServiceContext(c, store, ca, db, forwarder)
	svcCtx.Driver.Start()
	defer svcCtx.Driver.Stop()

	server := rest.MustNewServer(c.RestConf, rest.WithCors("*"))
	defer server.Stop()

	handler.RegisterHandlers(server, svcCtx)

	fmt.Printf("Starting gateway at %s:%d...\n", c.Host, c.Port)
	server.Start()
}
