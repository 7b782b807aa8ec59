package provisioning

import (
	"strings"

	sharedConfig "github.com/chamberirc/chamberbnc/internal/shared/config"
)

// Node is a provisioning node as the workflows see it.
type Node struct {
	Name          string
	Addr          string
	TemplateUser  string
	BindHost      string
	Panel         string
	PublicPort    int
	PublicSSLPort int
}

// DefaultTemplateUser is cloned when a node does not name its own template.
const DefaultTemplateUser = "template"

func NodeFromConfig(c sharedConfig.ProvisioningNodeConfig) Node {
	template := c.TemplateUser
	if template == "" {
		template = DefaultTemplateUser
	}
	return Node{
		Name:          c.Name,
		Addr:          c.Addr,
		TemplateUser:  template,
		BindHost:      c.OutboundBindHost(),
		Panel:         c.Public.Panel,
		PublicPort:    c.Public.Port,
		PublicSSLPort: c.Public.SSLPort,
	}
}

// NetworkName derives the per-user network entry name from the target
// server host: irc.example.net becomes "example".
func NetworkName(host string) string {
	labels := strings.Split(strings.Trim(strings.ToLower(host), "."), ".")
	candidate := labels[0]
	if len(labels) >= 2 {
		candidate = labels[len(labels)-2]
	}

	var b strings.Builder
	for _, r := range candidate {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || isNumeric(name) {
		return "default"
	}
	return name
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
