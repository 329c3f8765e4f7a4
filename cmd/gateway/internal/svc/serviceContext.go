// Code scaffolded in the goctl layout. Safe to edit.
package svc

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/meridianpay/authgateway/cmd/gateway/internal/config"
	"github.com/meridianpay/authgateway/internal/authsvc"
	"github.com/meridianpay/authgateway/internal/cache"
	"github.com/meridianpay/authgateway/internal/credential"
	"github.com/meridianpay/authgateway/internal/events"
	"github.com/meridianpay/authgateway/internal/rotation"
	"github.com/meridianpay/authgateway/internal/secretstore"
	"github.com/meridianpay/authgateway/internal/token"
	"github.com/meridianpay/authgateway/third_party/database"
)

// ServiceContext wires every component C1-C8 names into the collaborators
// the gateway's handlers/logic need, the way every teacher
// internal/svc.ServiceContext builds its RPC clients once at startup.
type ServiceContext struct {
	Config config.Config

	Store     secretstore.Store
	Cache     cache.Cache
	Codec     *token.Codec
	KeyRing   *token.KeyRing
	Validator *credential.Validator
	Auth      *authsvc.Service
	Rotation  *rotation.StateMachine
	Driver    *rotation.Driver
}

// NewServiceContext builds the gateway's ServiceContext. store and ca are
// supplied by main (a VaultStore/RedisCache in production, fakes in
// tests) so this function stays free of any real I/O.
func NewServiceContext(c config.Config, store secretstore.Store, ca cache.Cache, db *sqlx.DB, forwarder authsvc.Forwarder) *ServiceContext {
	keys := c.Token.ToKeyRing()
	codec := token.NewCodec(keys, c.Token.ToCodecConfig())

	sealer, err := c.Redis.ToSealer()
	if err != nil {
		panic(err)
	}

	validatorCfg := c.DegradedMode.ToValidatorConfig(c.AllowDeprecatedGrace, c.Redis.CredMetaTTL())
	validatorCfg.Sealer = sealer
	validator := credential.NewValidator(store, ca, validatorCfg)

	var emitter events.Emitter
	if c.Events.Enabled && db != nil {
		emitter = events.NewMultiEmitter(events.NewLogxEmitter(), events.NewPostgresEmitter(db))
	} else {
		emitter = events.NewMultiEmitter(events.NewLogxEmitter())
	}

	authCfg := authsvc.Config{
		ClockSkew:           time.Duration(c.Token.ClockSkewSeconds) * time.Second,
		TokenTTL:            time.Duration(c.Token.LifetimeSeconds) * time.Second,
		DegradedModeEnabled: c.DegradedMode.Enabled,
		BackendBaseURL:      c.Backend.BaseURL,
		BackendTimeout:      time.Duration(c.Backend.TimeoutMs) * time.Millisecond,
		Sealer:              sealer,
	}
	auth := authsvc.NewService(store, ca, validator, codec, forwarder, emitter, authCfg)

	sm := rotation.NewStateMachine(store, ca)
	driver := rotation.NewDriver(sm, c.Rotation.ToDriverConfig())

	return &ServiceContext{
		Config:    c,
		Store:     store,
		Cache:     ca,
		Codec:     codec,
		KeyRing:   keys,
		Validator: validator,
		Auth:      auth,
		Rotation:  sm,
		Driver:    driver,
	}
}

// MustConnectPostgres dials the events sink's Postgres database if event
// persistence is enabled, following third_party/database's
// connect-and-ping-on-construct idiom.
func MustConnectPostgres(ctx context.Context, c config.Config) *sqlx.DB {
	if !c.Events.Enabled {
		return nil
	}
	db, err := database.NewPostgresConnection(c.Events.Postgres)
	if err != nil {
		panic(err)
	}
	return db
}
