package pkg

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/hlysunnaram/sirius-ci/sdk"
)

// LoadEnv reads the trigger context and credentials for this run from the
// environment. These are the read-only signals injected by the hosting CI
// platform; everything else the orchestrator needs comes through the
// command line and config file.
func LoadEnv() (Config, error) {
	result := Config{}

	result.Trigger.PullRequest = os.Getenv("SIRIUSCI_PULL_REQUEST")

	result.Trigger.Branch = os.Getenv("SIRIUSCI_BRANCH")
	if len(strings.TrimSpace(result.Trigger.Branch)) == 0 {
		return Config{}, fmt.Errorf("SIRIUSCI_BRANCH is required")
	}

	result.Trigger.Commit = os.Getenv("SIRIUSCI_COMMIT")
	if len(strings.TrimSpace(result.Trigger.Commit)) == 0 {
		return Config{}, fmt.Errorf("SIRIUSCI_COMMIT is required")
	}

	result.Registry.Username = os.Getenv("SIRIUSCI_DOCKER_USERNAME")
	result.Registry.Password = os.Getenv("SIRIUSCI_DOCKER_PASSWORD")

	result.Nats.Url = os.Getenv("SIRIUSCI_NATS_URL")
	result.Nats.Jwt = os.Getenv("SIRIUSCI_NATS_JWT")
	result.Nats.Seed = os.Getenv("SIRIUSCI_NATS_SEED")

	result.Store.Endpoint = os.Getenv("SIRIUSCI_STORE_ENDPOINT")
	result.Store.AccessKey = os.Getenv("SIRIUSCI_STORE_ACCESS_KEY")
	result.Store.SecretKey = os.Getenv("SIRIUSCI_STORE_SECRET_KEY")
	result.Store.Bucket = os.Getenv("SIRIUSCI_STORE_BUCKET")

	return result, nil
}

type Config struct {
	Trigger  TriggerConfig
	Registry RegistryConfig
	Nats     NatsConfig
	Store    StoreConfig
}

type TriggerConfig struct {
	// PullRequest holds the pull-request number, or "false"/empty for
	// branch pushes.
	PullRequest string
	Branch      string
	Commit      string
}

type RegistryConfig struct {
	Username string
	Password string
}

func (c RegistryConfig) Present() bool {
	return c.Username != "" && c.Password != ""
}

type NatsConfig struct {
	Url  string
	Jwt  string
	Seed string
}

type StoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

func (c StoreConfig) Present() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// RunContext builds the immutable run context for this invocation.
func (c Config) RunContext() *sdk.RunContext {
	trigger := sdk.BranchPushTrigger
	pr := strings.TrimSpace(c.Trigger.PullRequest)
	if pr != "" && pr != "false" {
		trigger = sdk.PullRequestTrigger
	}

	return &sdk.RunContext{
		ID:                     uuid.NewString(),
		Trigger:                trigger,
		Branch:                 c.Trigger.Branch,
		Commit:                 c.Trigger.Commit,
		HasRegistryCredentials: c.Registry.Present(),
	}
}

func (c Config) ConnectNats(name string) (*nats.Conn, error) {
	natsOpts := []nats.Option{
		nats.Name(name),
	}

	if c.Nats.Jwt != "" {
		natsOpts = append(natsOpts, nats.UserJWTAndSeed(c.Nats.Jwt, c.Nats.Seed))
	}

	url := c.Nats.Url
	if url == "" {
		url = nats.DefaultURL
	}

	return nats.Connect(url, natsOpts...)
}
