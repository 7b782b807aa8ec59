package irc

import (
	"context"
	"strings"

	"github.com/ergochat/irc-go/ircmsg"

	"github.com/chamberirc/chamberbnc/internal/application/relay"
)

const ctcpDelim = "\x01"

// InboundMessage is a PRIVMSG addressed to a channel the bot is in or to
// the bot itself.
type InboundMessage struct {
	Network string
	Target  string
	Nick    string
	Mask    string
	Text    string

	session *Session
}

// Private reports whether the message was sent directly to the bot.
func (m InboundMessage) Private() bool {
	return !isChannel(m.Target)
}

// Channel is the channel the message was sent to, or empty when private.
func (m InboundMessage) Channel() string {
	if m.Private() {
		return ""
	}
	return m.Target
}

// Reply answers in the channel, or to the sender when the message was private.
func (m InboundMessage) Reply(ctx context.Context, text string) error {
	target := m.Target
	if m.Private() {
		target = m.Nick
	}
	return m.session.Send(ctx, target, text)
}

func isChannel(target string) bool {
	return strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&")
}

// sourceNick extracts the nickname from a nick!user@host source.
func sourceNick(source string) string {
	if nuh, err := ircmsg.ParseNUH(source); err == nil && nuh.Name != "" {
		return nuh.Name
	}
	if i := strings.IndexByte(source, '!'); i >= 0 {
		return source[:i]
	}
	return source
}

func param(msg ircmsg.Message, i int) string {
	if i < len(msg.Params) {
		return msg.Params[i]
	}
	return ""
}

// parseAction unwraps a CTCP ACTION. ok is false for any other CTCP.
func parseAction(text string) (action string, isCTCP bool, ok bool) {
	if !strings.HasPrefix(text, ctcpDelim) {
		return "", false, false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(text, ctcpDelim), ctcpDelim)
	if rest, found := strings.CutPrefix(body, "ACTION "); found {
		return rest, true, true
	}
	return "", true, false
}

// translate maps a protocol message onto a relay event. ok is false for
// messages the relay does not care about.
func translate(msg ircmsg.Message) (relay.Event, bool) {
	nick := sourceNick(msg.Source)

	switch msg.Command {
	case "PRIVMSG":
		target, text := param(msg, 0), param(msg, 1)
		if !isChannel(target) {
			return relay.Event{}, false
		}
		action, isCTCP, ok := parseAction(text)
		if isCTCP {
			if !ok {
				return relay.Event{}, false
			}
			return relay.Event{Kind: relay.EventAction, Channel: target, Nick: nick, Text: action}, true
		}
		return relay.Event{Kind: relay.EventMessage, Channel: target, Nick: nick, Text: text}, true
	case "JOIN":
		return relay.Event{Kind: relay.EventJoin, Channel: param(msg, 0), Nick: nick}, true
	case "PART":
		return relay.Event{Kind: relay.EventPart, Channel: param(msg, 0), Nick: nick}, true
	case "KICK":
		return relay.Event{Kind: relay.EventLeave, Channel: param(msg, 0), Nick: param(msg, 1)}, true
	case "QUIT":
		return relay.Event{Kind: relay.EventQuit, Nick: nick}, true
	default:
		return relay.Event{}, false
	}
}

// inbound returns the command candidate carried by a PRIVMSG. CTCP
// messages are never commands.
func inbound(network string, msg ircmsg.Message) (InboundMessage, bool) {
	if msg.Command != "PRIVMSG" || len(msg.Params) < 2 {
		return InboundMessage{}, false
	}
	text := msg.Params[1]
	if strings.HasPrefix(text, ctcpDelim) {
		return InboundMessage{}, false
	}
	return InboundMessage{
		Network: network,
		Target:  msg.Params[0],
		Nick:    sourceNick(msg.Source),
		Mask:    msg.Source,
		Text:    text,
	}, true
}
