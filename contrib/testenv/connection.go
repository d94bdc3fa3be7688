// Package testenv provides utilities for testing code built on the apiobject
// client.
//
// When APIOBJECT_URL is set, clients talk to that service and are configured
// the way connection.LoadConfig reads the environment. Otherwise an
// in-process fake service is started for each client.
package testenv

import (
	"fmt"
	"os"

	"github.com/apiobject/apiobject.go"
	"github.com/apiobject/apiobject.go/internal/fakeapi"
	"github.com/apiobject/apiobject.go/pkg/connection"
)

const (
	// EnvURL is the environment variable that names the service to test
	// against. If not set, a fake service is used.
	EnvURL = "APIOBJECT_URL"

	// EnvConfigFile optionally names a config file for connection.LoadConfig.
	EnvConfigFile = "APIOBJECT_CONFIG"
)

// Env is a client plus, when no live service is configured, the fake it
// talks to.
type Env struct {
	Client *apiobject.Client
	// Fake is nil when running against a live service.
	Fake *fakeapi.Server
}

// Close stops the fake service, if any.
func (e *Env) Close() error {
	if e.Fake == nil {
		return nil
	}
	return e.Fake.Stop()
}

// Live reports whether the environment names a live service.
func Live() bool {
	return os.Getenv(EnvURL) != "" || os.Getenv(EnvConfigFile) != ""
}

func MustNew(tables ...string) *Env {
	env, err := New(tables...)
	if err != nil {
		panic(fmt.Sprintf("Failed to create apiobject client: %v", err))
	}
	return env
}

// New creates a client for the environment. For the fake service, tables
// are defined empty so that CreateDefault works on them.
func New(tables ...string) (*Env, error) {
	if Live() {
		conf, err := connection.LoadConfig(os.Getenv(EnvConfigFile))
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}

		client, err := apiobject.New(conf)
		if err != nil {
			return nil, err
		}

		return &Env{Client: client}, nil
	}

	fake := fakeapi.NewServer("127.0.0.1:0")
	if err := fake.Start(); err != nil {
		return nil, fmt.Errorf("failed to start fake service: %w", err)
	}
	for _, table := range tables {
		fake.DefineTable(table)
	}

	client, err := apiobject.FromURLString(fake.URL())
	if err != nil {
		_ = fake.Stop()
		return nil, err
	}

	return &Env{Client: client, Fake: fake}, nil
}
