package client

import (
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// VersionAuto lets the server pick the protocol version.
const VersionAuto = "auto"

// SupportedTDSVersions lists the protocol versions a connection accepts.
var SupportedTDSVersions = []string{"4.0", "4.2", "4.95", "5.0", "7.0", "7.2", "7.3", "7.4"}

// ParseTDSVersion validates a protocol version. It returns nil for auto.
func ParseTDSVersion(v string) (*goversion.Version, error) {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, VersionAuto) {
		return nil, nil
	}

	want, err := goversion.NewVersion(strings.TrimPrefix(strings.ToLower(v), "tds"))
	if err != nil {
		return nil, fmt.Errorf("invalid TDS version %q: %w", v, err)
	}
	for _, s := range SupportedTDSVersions {
		if goversion.Must(goversion.NewVersion(s)).Equal(want) {
			return want, nil
		}
	}
	return nil, fmt.Errorf("unsupported TDS version %q (supported: %s)", v, strings.Join(SupportedTDSVersions, ", "))
}
