package discord

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/hostbr/deploybot/internal/service/adminlog"
	"github.com/hostbr/deploybot/internal/service/deploy"
	"github.com/hostbr/deploybot/internal/service/poller"
	"github.com/hostbr/deploybot/internal/settings"
	"github.com/hostbr/deploybot/pkg/config"
)

// Bot wires Discord interactions to the deploy service. It is a thin
// presentation layer: flow decisions live in internal/service.
type Bot struct {
	session  *discordgo.Session
	svc      *deploy.Service
	poller   *poller.Poller
	settings *settings.Store
	notifier adminlog.Notifier
	cfg      config.BotConfig
	logger   *slog.Logger

	registered []*discordgo.ApplicationCommand

	// pixCodes keeps the copy-paste PIX code for each open payment so
	// the copy button can serve it without another provider call.
	pixCodes sync.Map
}

// New builds the bot but does not connect yet.
func New(cfg config.BotConfig, svc *deploy.Service, p *poller.Poller, st *settings.Store, notifier adminlog.Notifier, logger *slog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	b := &Bot{
		session:  session,
		svc:      svc,
		poller:   p,
		settings: st,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	session.AddHandler(b.onChannelDelete)
	return b, nil
}

// Session exposes the underlying connection for the admin notifier.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Start opens the gateway connection and registers slash commands.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	for _, cmd := range commandDefinitions() {
		created, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.cfg.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("register command %s: %w", cmd.Name, err)
		}
		b.registered = append(b.registered, created)
	}
	b.logger.Info("discord commands registered", "count", len(b.registered), "guild_id", b.cfg.GuildID)
	return nil
}

// Stop removes registered commands and closes the connection.
func (b *Bot) Stop() {
	for _, cmd := range b.registered {
		if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.cfg.GuildID, cmd.ID); err != nil {
			b.logger.Warn("command cleanup failed", "command", cmd.Name, "error", err)
		}
	}
	if err := b.session.Close(); err != nil {
		b.logger.Warn("discord session close failed", "error", err)
	}
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("discord connected", "username", r.User.Username, "guilds", len(r.Guilds))
}

// onChannelDelete cancels every active poll bound to a deleted ticket
// channel. Channel deletion means the purchase was abandoned.
func (b *Bot) onChannelDelete(_ *discordgo.Session, e *discordgo.ChannelDelete) {
	b.poller.CancelForChannel(e.Channel.ID)
}

// isAdmin reports whether the interaction member carries the admin role.
func (b *Bot) isAdmin(i *discordgo.InteractionCreate) bool {
	if b.cfg.AdminRoleID == "" || i.Member == nil {
		return false
	}
	return slices.Contains(i.Member.Roles, b.cfg.AdminRoleID)
}

// userID extracts the invoking user id from guild or DM interactions.
func userID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
