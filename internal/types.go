package internal

import (
	"context"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Configurer interface {
	Configure(envs map[string]string) error
}

type Opener interface {
	Open(ctx context.Context) error
	Closer
}

type Closer interface {
	Close(ctx context.Context) error
}

type Clearer interface {
	Clear(ctx context.Context) error
}

// Envs builds the configuration map: values from the given dotenv files
// (missing files are ignored) are overridden by the process environment
func Envs(files ...string) map[string]string {
	envs := make(map[string]string)
	for _, file := range files {
		values, err := godotenv.Read(file)
		if err != nil {
			continue
		}
		for key, value := range values {
			envs[key] = value
		}
	}
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
	return envs
}
