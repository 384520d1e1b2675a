package env

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type convertible interface {
	~[]byte | ~string
}

var (
	DB_CONN      string
	HS256_SECRET []byte
	APP_PORT     string
	SERVER_ID    string

	// Optional integrations; empty disables them.
	NSQD_TCP_ADDR     string
	NSQLOOKUPD_ADDR   string
	ALLOWED_ORIGINS   string
	ENABLE_TEST_RESET bool
)

func initEnv[T convertible](dst *T, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return fmt.Errorf("env: %s not set", key)
	}
	*dst = T(v)
	return nil
}

// Load reads .env if present and populates the package variables. Missing
// required variables fail fast; optional ones leave their integration off.
func Load() error {
	godotenv.Load()
	for _, f := range []func() error{
		func() error { return initEnv(&DB_CONN, "DB_CONN") },
		func() error { return initEnv(&HS256_SECRET, "HS256_SECRET") },
		func() error { return initEnv(&APP_PORT, "APP_PORT") },
		func() error { return initEnv(&SERVER_ID, "SERVER_ID") },
	} {
		if err := f(); err != nil {
			return err
		}
	}
	NSQD_TCP_ADDR = os.Getenv("NSQD_TCP_ADDR")
	NSQLOOKUPD_ADDR = os.Getenv("NSQLOOKUPD_ADDR")
	ALLOWED_ORIGINS = os.Getenv("ALLOWED_ORIGINS")
	ENABLE_TEST_RESET = os.Getenv("ENABLE_TEST_RESET") == "true"
	return nil
}
