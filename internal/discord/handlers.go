package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) onInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.routeCommand(i)
	case discordgo.InteractionMessageComponent:
		b.routeComponent(i)
	case discordgo.InteractionModalSubmit:
		b.routeModal(i)
	}
}

func (b *Bot) routeCommand(i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	b.logger.Info("command received", "command", name, "user_id", userID(i))

	switch name {
	case "deploy":
		b.handleDeploy(i)
	case "status":
		b.handleStatus(i)
	case "list":
		b.handleList(i)
	case "delete":
		b.handleDelete(i)
	case "restart":
		b.handleRestart(i)
	case "logs":
		b.handleLogs(i)
	case "help":
		b.handleHelp(i)
	case "config":
		b.handleConfig(i)
	default:
		b.respondEphemeral(i, "❌ Comando desconhecido.")
	}
}

func (b *Bot) routeComponent(i *discordgo.InteractionCreate) {
	id := i.MessageComponentData().CustomID
	switch {
	case id == "deploy_configure":
		b.showConfigModal(i)
	case id == "deploy_payment":
		b.showPayerModal(i)
	case id == "deploy_retry":
		b.handleRetry(i)
	case id == "deploy_cancel_retry":
		b.handleCancelRetry(i)
	case strings.HasPrefix(id, "deploy_copy_pix_"):
		b.handleCopyPix(i, strings.TrimPrefix(id, "deploy_copy_pix_"))
	}
}

func (b *Bot) routeModal(i *discordgo.InteractionCreate) {
	switch i.ModalSubmitData().CustomID {
	case "deploy_config":
		b.handleConfigModal(i)
	case "deploy_userdata":
		b.handlePayerModal(i)
	}
}

// modalValue extracts a text input value from a modal submission.
func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionsRow.Components {
			input, ok := comp.(*discordgo.TextInput)
			if ok && input.CustomID == customID {
				return strings.TrimSpace(input.Value)
			}
		}
	}
	return ""
}

// commandOption finds a top-level option by name.
func commandOption(i *discordgo.InteractionCreate, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}
