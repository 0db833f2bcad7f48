// Package redis connects the go-redis client used for shared session
// storage.
//
// Connect parses a redis:// URL and pings the server, retrying a few times so
// the process can start before Redis is ready. Healthcheck adapts a client to
// the func(context.Context) error shape used by diagnostics.
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	client, err := redis.Connect(ctx, cfg)
package redis
