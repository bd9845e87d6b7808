package util

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/user"
	"strconv"

	"github.com/techwm-project/techwm/pkg/models"
	"github.com/techwm-project/techwm/pkg/publicapi/client"
)

const UserEnvVar = "TECHWM_USER"

// Caller is the identity the CLI sends with every request. It is filled in
// from the --user and --account-type flags.
var Caller = models.Caller{AccountType: models.AccountTypeDefault}

// DefaultUsername returns $TECHWM_USER, falling back to the login name.
func DefaultUsername() string {
	if name := os.Getenv(UserEnvVar); name != "" {
		return name
	}
	if current, err := user.Current(); err == nil {
		return current.Username
	}
	return ""
}

// GetAPIClient returns a client for the server named by the loaded config.
func GetAPIClient(ctx context.Context) (*client.APIClient, error) {
	cfg := GetConfig(ctx)
	host := cfg.Server.Host
	// a wildcard listen address is not something to dial
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "127.0.0.1"
	}
	base := fmt.Sprintf("http://%s", net.JoinHostPort(host, strconv.Itoa(cfg.Server.Port)))
	return client.NewAPIClient(base, client.WithCaller(Caller))
}
