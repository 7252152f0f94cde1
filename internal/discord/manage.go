package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/hostbr/deploybot/internal/service/deploy"
	"github.com/hostbr/deploybot/internal/service/hosting"
)

// appOption returns the "app" option value, or empty.
func appOption(i *discordgo.InteractionCreate) string {
	if opt := commandOption(i, "app"); opt != nil {
		return strings.TrimSpace(opt.StringValue())
	}
	return ""
}

func (b *Bot) handleStatus(i *discordgo.InteractionCreate) {
	appID := appOption(i)
	status, err := b.svc.UserAppStatus(context.Background(), userID(i), appID)
	if err != nil {
		b.respondAppError(i, appID, err)
		return
	}

	state := "🔴 Parada"
	if status.Running {
		state = "🟢 Rodando"
	}
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📊 Status de %s", status.Name),
		Color: colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Estado", Value: state, Inline: true},
			{Name: "Memória", Value: fmt.Sprintf("%d/%d MB", status.MemoryUsedMB, status.MemoryMB), Inline: true},
			{Name: "CPU", Value: fmt.Sprintf("%.0f%%", status.CPUPercent), Inline: true},
			{Name: "Uptime", Value: status.Uptime, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: embedFooter},
	}
	if status.URL != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "URL", Value: status.URL})
	}
	b.respondEmbed(i, embed, nil)
}

func (b *Bot) handleList(i *discordgo.InteractionCreate) {
	apps, err := b.svc.ListUserApps(context.Background(), userID(i))
	if err != nil {
		b.logger.Error("list apps failed", "user_id", userID(i), "error", err)
		b.respondEphemeral(i, "❌ Não foi possível listar as aplicações agora.")
		return
	}
	if len(apps) == 0 {
		b.respondEphemeral(i, "📭 Você ainda não tem aplicações hospedadas. Use /deploy para começar.")
		return
	}

	var sb strings.Builder
	for _, app := range apps {
		marker := "🔴"
		if app.Running {
			marker = "🟢"
		}
		fmt.Fprintf(&sb, "%s **%s** — `%s`\n", marker, app.Name, app.ID)
	}
	b.respondEmbed(i, simpleEmbed("📦 Suas aplicações", sb.String(), colorPrimary), nil)
}

func (b *Bot) handleDelete(i *discordgo.InteractionCreate) {
	appID := appOption(i)
	if err := b.svc.DeleteUserApp(context.Background(), userID(i), appID); err != nil {
		b.respondAppError(i, appID, err)
		return
	}
	b.respondEmbed(i, simpleEmbed("🗑️ Aplicação removida",
		fmt.Sprintf("A aplicação `%s` foi removida da hospedagem.", appID), colorSuccess), nil)
}

func (b *Bot) handleRestart(i *discordgo.InteractionCreate) {
	appID := appOption(i)
	if err := b.svc.RestartUserApp(context.Background(), userID(i), appID); err != nil {
		b.respondAppError(i, appID, err)
		return
	}
	b.respondEmbed(i, simpleEmbed("🔄 Aplicação reiniciada",
		fmt.Sprintf("A aplicação `%s` está sendo reiniciada.", appID), colorSuccess), nil)
}

func (b *Bot) handleLogs(i *discordgo.InteractionCreate) {
	appID := appOption(i)
	logs, err := b.svc.UserAppLogs(context.Background(), userID(i), appID)
	if err != nil {
		b.respondAppError(i, appID, err)
		return
	}
	if len(logs.Lines) == 0 {
		b.respondEphemeral(i, "📭 Nenhum log disponível para esta aplicação.")
		return
	}

	// Discord embeds cap descriptions at 4096 chars; keep the tail.
	text := strings.Join(logs.Lines, "\n")
	const maxLogChars = 3800
	if len(text) > maxLogChars {
		text = text[len(text)-maxLogChars:]
	}
	b.respondEmbed(i, simpleEmbed(fmt.Sprintf("📜 Logs de %s", appID),
		fmt.Sprintf("```\n%s\n```", text), colorInfo), nil)
}

func (b *Bot) handleHelp(i *discordgo.InteractionCreate) {
	embed := &discordgo.MessageEmbed{
		Title:       "❓ Comandos disponíveis",
		Description: "Hospede suas aplicações na Square Cloud pagando com PIX.",
		Color:       colorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "/deploy", Value: "Enviar um ZIP e iniciar uma nova hospedagem"},
			{Name: "/list", Value: "Listar suas aplicações"},
			{Name: "/status", Value: "Ver o status de uma aplicação"},
			{Name: "/logs", Value: "Ver os logs de uma aplicação"},
			{Name: "/restart", Value: "Reiniciar uma aplicação"},
			{Name: "/delete", Value: "Remover uma aplicação"},
			{Name: "/config", Value: "Configurações administrativas (somente admins)"},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: embedFooter},
	}
	b.respondEmbed(i, embed, nil)
}

// respondAppError maps app-management errors to user-facing messages.
func (b *Bot) respondAppError(i *discordgo.InteractionCreate, appID string, err error) {
	switch {
	case errors.Is(err, deploy.ErrNotOwner):
		b.respondEphemeral(i, "❌ Essa aplicação não pertence a você.")
	case errors.Is(err, hosting.ErrAppNotFound):
		b.respondEphemeral(i, "❌ Aplicação não encontrada na hospedagem.")
	default:
		b.logger.Error("app command failed", "app_id", appID, "user_id", userID(i), "error", err)
		b.respondEphemeral(i, "❌ A operação falhou. Tente novamente em instantes.")
	}
}
