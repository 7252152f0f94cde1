package discord

import "github.com/bwmarrin/discordgo"

// Embed colors, shared across every reply.
const (
	colorPrimary = 0x7289da
	colorSuccess = 0x43b581
	colorError   = 0xf04747
	colorWarning = 0xfaa61a
	colorInfo    = 0x5865f2
)

const embedFooter = "Square Cloud Bot"

func simpleEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: embedFooter},
	}
}

// respondEphemeral sends an ephemeral text reply to an interaction.
func (b *Bot) respondEphemeral(i *discordgo.InteractionCreate, content string) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Warn("interaction respond failed", "error", err)
	}
}

// respondEmbed sends an ephemeral embed reply, optionally with components.
func (b *Bot) respondEmbed(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Warn("interaction respond failed", "error", err)
	}
}

// editReply replaces the original interaction response.
func (b *Bot) editReply(i *discordgo.Interaction, content string, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	edit := &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	}
	_, err := b.session.InteractionResponseEdit(i, edit)
	return err
}
