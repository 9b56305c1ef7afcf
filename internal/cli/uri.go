package cli

import (
	"fmt"
	"net/url"
	"strconv"
)

const defaultClusterPort = 9200

// clusterURI is the cluster location carried by --url.
type clusterURI struct {
	Scheme   string
	Address  string
	Port     int
	Username string
	Password string
}

// parseClusterURI splits a cluster URL into scheme, host, port and
// credentials. Path, query and fragment are ignored. A URL without a port
// targets 9200.
func parseClusterURI(raw string) (clusterURI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return clusterURI{}, fmt.Errorf("invalid URI %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return clusterURI{}, fmt.Errorf("unsupported scheme %q (must be http or https)", u.Scheme)
	}
	if u.Hostname() == "" {
		return clusterURI{}, fmt.Errorf("invalid URI %q: host is required", raw)
	}

	out := clusterURI{Scheme: u.Scheme, Address: u.Hostname(), Port: defaultClusterPort}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return clusterURI{}, fmt.Errorf("invalid URI %q: port must be 1-65535", raw)
		}
		out.Port = port
	}
	if u.User != nil {
		out.Username = u.User.Username()
		out.Password, _ = u.User.Password()
	}
	return out, nil
}
