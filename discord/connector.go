// Package discord bridges Discord channels to the resolver, so a
// persona can answer in mapped channels alongside the HTTP API.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"

	"github.com/persona-labs/persona-service/engine"
)

const resolveTimeout = 15 * time.Second

// Connector runs a Discord session and answers messages in the
// channels that have a persona assigned.
type Connector struct {
	session  *discordgo.Session
	resolver *engine.Resolver
	personas map[string]string
	log      *log.Logger
}

// NewConnector builds a connector. The token must be non-empty; the
// caller decides whether Discord is enabled at all.
func NewConnector(token string, channelPersonas map[string]string, resolver *engine.Resolver, logger *log.Logger) (*Connector, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("could not create discord session: %w", err)
	}

	c := &Connector{
		session:  session,
		resolver: resolver,
		personas: channelPersonas,
		log:      logger,
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent
	session.AddHandler(c.handleMessage)
	return c, nil
}

// Open connects to the Discord gateway.
func (c *Connector) Open() error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	c.log.Info("discord connector online", "channels", len(c.personas))
	return nil
}

// Close shuts the gateway connection down.
func (c *Connector) Close() error {
	return c.session.Close()
}

func (c *Connector) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}
	personaID, ok := c.personas[m.ChannelID]
	if !ok || m.Content == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	res, err := c.resolver.Resolve(ctx, personaID, m.Author.ID, m.Content)
	if err != nil {
		c.log.Error("could not resolve discord message", "persona", personaID, "channel", m.ChannelID, "err", err)
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, res.Text); err != nil {
		c.log.Error("could not send discord reply", "channel", m.ChannelID, "err", err)
	}
}
