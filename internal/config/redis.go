package config

import (
    "context"
    "crypto/tls"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient dials the Redis server named in the Config and verifies
// the connection.  Redis backs the token-bucket limiter in front of the
// credential endpoints; on dial failure the function returns nil and the
// limiter degrades to a pass-through, so Redis is never a hard dependency
// of the auth service.  All settings come from Load(); nothing here reads
// the environment.
func NewRedisClient(c Config) *redis.Client {
    var tlsConf *tls.Config
    if c.RedisTLS {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      c.RedisAddr,
        Password:  c.RedisPassword,
        DB:        c.RedisDB,
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
