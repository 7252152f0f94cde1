package discord

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/hostbr/deploybot/internal/service/poller"
)

// replySurface adapts the ephemeral payment reply to the poller's
// surface contract. All updates go through the interaction webhook.
type replySurface struct {
	bot         *Bot
	interaction *discordgo.Interaction
}

var _ poller.Surface = (*replySurface)(nil)

func (s *replySurface) ChannelExists(channelID string) bool {
	if _, err := s.bot.session.State.Channel(channelID); err == nil {
		return true
	}
	_, err := s.bot.session.Channel(channelID)
	if err == nil {
		return true
	}
	var rerr *discordgo.RESTError
	if errors.As(err, &rerr) && rerr.Message != nil && rerr.Message.Code == discordgo.ErrCodeUnknownChannel {
		return false
	}
	// Transient API failure: assume the channel is still there rather
	// than cancelling a live payment on a network hiccup.
	s.bot.logger.Warn("channel liveness check failed", "channel_id", channelID, "error", err)
	return true
}

func (s *replySurface) UpdateCountdown(remaining time.Duration) error {
	if remaining < 0 {
		remaining = 0
	}
	mins := int(remaining.Minutes())
	secs := int(remaining.Seconds()) % 60
	content := fmt.Sprintf("⏳ Aguardando pagamento... tempo restante: %02d:%02d", mins, secs)

	// Content-only edit, the QR embed and buttons stay in place.
	_, err := s.bot.session.InteractionResponseEdit(s.interaction, &discordgo.WebhookEdit{Content: &content})
	return mapSurfaceErr(err)
}

func (s *replySurface) NotifyRejected() error {
	embed := simpleEmbed("❌ Pagamento recusado",
		"O pagamento foi recusado ou cancelado pelo provedor. Use /deploy para tentar novamente.",
		colorError)
	return mapSurfaceErr(s.bot.editReply(s.interaction, "", []*discordgo.MessageEmbed{embed}, nil))
}

func (s *replySurface) NotifyNotFound() error {
	embed := simpleEmbed("❌ Pagamento não encontrado",
		"O provedor de pagamentos não reconhece mais esta cobrança. Use /deploy para gerar uma nova.",
		colorError)
	return mapSurfaceErr(s.bot.editReply(s.interaction, "", []*discordgo.MessageEmbed{embed}, nil))
}

// mapSurfaceErr converts deleted-message and deleted-channel REST
// errors into the poller's sentinel.
func mapSurfaceErr(err error) error {
	if err == nil {
		return nil
	}
	var rerr *discordgo.RESTError
	if errors.As(err, &rerr) && rerr.Message != nil {
		switch rerr.Message.Code {
		case discordgo.ErrCodeUnknownMessage, discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeUnknownWebhook:
			return poller.ErrSurfaceGone
		}
	}
	return err
}
