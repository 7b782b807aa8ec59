package chat

import (
	"fmt"
	"strings"
)

func (d *Dispatcher) handleServers(c *call) error {
	nodes := d.nodes.Nodes()
	if len(nodes) == 0 {
		c.say("No bouncer servers are configured.")
		return nil
	}
	items := make([]string, 0, len(nodes))
	for _, n := range nodes {
		items = append(items, fmt.Sprintf("%s (%s)", n.Name, n.Addr))
	}
	c.say("Servers: %s", strings.Join(items, ", "))
	return nil
}

func (d *Dispatcher) handleNetworks(c *call) error {
	networks := d.networks.NetworkList()
	if len(networks) == 0 {
		c.say("No networks are configured.")
		return nil
	}
	items := make([]string, 0, len(networks))
	for _, n := range networks {
		state := "disconnected"
		if n.Connected {
			state = "connected"
		}
		items = append(items, fmt.Sprintf("%s (%s, %s)", n.Name, n.Server, state))
	}
	c.say("Networks: %s", strings.Join(items, ", "))
	return nil
}

func (d *Dispatcher) handleBroadcast(c *call) error {
	if c.args == "" {
		return errUsage
	}
	n := d.networks.Broadcast(c.ctx, "[Broadcast] "+c.args)
	c.say("Broadcast sent to %d network(s).", n)
	return nil
}

func (d *Dispatcher) handleTopic(c *call) error {
	if c.args == "" {
		return errUsage
	}
	n := d.networks.SetTopic(c.ctx, d.opts.TopicChannel, c.args)
	c.say("Topic of %s set on %d network(s).", d.opts.TopicChannel, n)
	return nil
}
