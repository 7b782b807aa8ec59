package provisioning

import (
	"fmt"
)

// Account is what gets created on a node for an approved request.
type Account struct {
	Username     string
	Password     string
	TargetServer string
	TargetPort   int
}

// ImmediateCommands are issued right away, in order.
func ImmediateCommands(node Node, acct Account) []string {
	u := acct.Username
	return []string{
		fmt.Sprintf("CloneUser %s %s", node.TemplateUser, u),
		fmt.Sprintf("Set Nick %s %s", u, u),
		fmt.Sprintf("Set AltNick %s %s_", u, u),
		fmt.Sprintf("Set Ident %s %s", u, u),
		fmt.Sprintf("Set BindHost %s %s", u, node.BindHost),
		fmt.Sprintf("Set DenySetBindHost %s true", u),
		fmt.Sprintf("Set Password %s %s", u, acct.Password),
	}
}

// DeferredCommands are issued once the node has settled after the clone.
func DeferredCommands(acct Account) []string {
	u := acct.Username
	network := NetworkName(acct.TargetServer)
	return []string{
		fmt.Sprintf("AddNetwork %s %s", u, network),
		fmt.Sprintf("SetNetwork Nick %s %s %s", u, network, u),
		fmt.Sprintf("AddServer %s %s %s %d", u, network, acct.TargetServer, acct.TargetPort),
	}
}
