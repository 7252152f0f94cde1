package discord

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/hostbr/deploybot/internal/service/adminlog"
	"github.com/hostbr/deploybot/internal/settings"
	"github.com/hostbr/deploybot/pkg/config"
)

// ChannelNotifier posts administrative events as embeds into the
// configured log channels. It stays inert until a session is bound,
// which lets it be composed into the service wiring before the gateway
// connection exists.
type ChannelNotifier struct {
	mu       sync.RWMutex
	session  *discordgo.Session
	settings *settings.Store
	channels map[adminlog.Kind]string
	logger   *slog.Logger
}

var _ adminlog.Notifier = (*ChannelNotifier)(nil)

// NewChannelNotifier maps each event kind to its log channel id. Kinds
// without a configured channel are silently skipped.
func NewChannelNotifier(cfg config.BotConfig, st *settings.Store, logger *slog.Logger) *ChannelNotifier {
	channels := map[adminlog.Kind]string{
		adminlog.KindPayment:     cfg.PaymentLogChannel,
		adminlog.KindDeploy:      cfg.DeployLogChannel,
		adminlog.KindError:       cfg.AdminLogChannel,
		adminlog.KindAdminAction: cfg.ActionLogChannel,
	}
	return &ChannelNotifier{settings: st, channels: channels, logger: logger}
}

// Bind attaches the live gateway session.
func (n *ChannelNotifier) Bind(session *discordgo.Session) {
	n.mu.Lock()
	n.session = session
	n.mu.Unlock()
}

// Emit posts the event. Delivery is best-effort; failures are logged
// and never propagate to the originating flow.
func (n *ChannelNotifier) Emit(_ context.Context, event adminlog.Event) {
	n.mu.RLock()
	session := n.session
	n.mu.RUnlock()
	if session == nil {
		return
	}
	channelID := n.channels[event.Kind]
	if channelID == "" {
		return
	}
	if !n.enabled(event.Kind) {
		return
	}

	if _, err := session.ChannelMessageSendEmbed(channelID, eventEmbed(event)); err != nil {
		n.logger.Warn("admin channel notification failed", "kind", event.Kind, "channel_id", channelID, "error", err)
	}
}

// enabled honors the admin notification toggles.
func (n *ChannelNotifier) enabled(kind adminlog.Kind) bool {
	cfg := n.settings.Load()
	if kind == adminlog.KindPayment {
		return cfg.Notifications.PaymentNotifications
	}
	return cfg.Notifications.AdminNotifications
}

func eventEmbed(event adminlog.Event) *discordgo.MessageEmbed {
	title := "📒 Evento"
	color := colorInfo
	switch event.Kind {
	case adminlog.KindPayment:
		title, color = "💰 Pagamento registrado", colorSuccess
	case adminlog.KindDeploy:
		title, color = "🚀 Deploy concluído", colorSuccess
	case adminlog.KindError:
		title, color = "❌ Erro no fluxo", colorError
	case adminlog.KindAdminAction:
		title, color = "🔧 Ação administrativa", colorWarning
	}

	keys := make([]string, 0, len(event.Fields))
	for k := range event.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]*discordgo.MessageEmbedField, 0, len(keys))
	for _, k := range keys {
		v := event.Fields[k]
		if v == "" {
			v = "-"
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: k, Value: v, Inline: true})
	}
	return &discordgo.MessageEmbed{
		Title:     title,
		Color:     color,
		Fields:    fields,
		Timestamp: time.Now().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: embedFooter},
	}
}
