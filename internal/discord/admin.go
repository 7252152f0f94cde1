package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/hostbr/deploybot/internal/domain"
	"github.com/hostbr/deploybot/internal/service/adminlog"
)

// handleConfig routes the admin-only /config subcommands.
func (b *Bot) handleConfig(i *discordgo.InteractionCreate) {
	if !b.isAdmin(i) {
		b.respondEphemeral(i, "❌ Apenas administradores podem usar este comando.")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.respondEphemeral(i, "❌ Subcomando ausente.")
		return
	}
	sub := options[0]
	switch sub.Name {
	case "show":
		b.handleConfigShow(i)
	case "price":
		b.handleConfigPrice(i, sub)
	case "toggle":
		b.handleConfigToggle(i, sub)
	case "test":
		b.handleConfigTest(i)
	default:
		b.respondEphemeral(i, "❌ Subcomando desconhecido.")
	}
}

func onOff(v bool) string {
	if v {
		return "✅ ativado"
	}
	return "❌ desativado"
}

func (b *Bot) handleConfigShow(i *discordgo.InteractionCreate) {
	cfg := b.settings.Load()
	embed := &discordgo.MessageEmbed{
		Title: "⚙️ Configurações do bot",
		Color: colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Plano Básico", Value: fmt.Sprintf("R$ %.2f", cfg.Payment.BasicPrice), Inline: true},
			{Name: "Plano Padrão", Value: fmt.Sprintf("R$ %.2f", cfg.Payment.StandardPrice), Inline: true},
			{Name: "Plano Premium", Value: fmt.Sprintf("R$ %.2f", cfg.Payment.PremiumPrice), Inline: true},
			{Name: "Pagamentos PIX", Value: onOff(cfg.Payment.PixEnabled), Inline: true},
			{Name: "Deploy automático", Value: onOff(cfg.Payment.AutoDeploy), Inline: true},
			{Name: "Notif. de pagamento", Value: onOff(cfg.Notifications.PaymentNotifications), Inline: true},
			{Name: "Notif. administrativas", Value: onOff(cfg.Notifications.AdminNotifications), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: embedFooter},
	}
	b.respondEmbed(i, embed, nil)
}

func (b *Bot) handleConfigPrice(i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	var plan domain.Plan
	var value float64
	for _, opt := range sub.Options {
		switch opt.Name {
		case "plano":
			plan = domain.Plan(opt.StringValue())
		case "valor":
			value = opt.FloatValue()
		}
	}
	if value <= 0 {
		b.respondEphemeral(i, "❌ O preço precisa ser maior que zero.")
		return
	}

	cfg := b.settings.Load()
	switch plan {
	case domain.PlanBasic:
		cfg.Payment.BasicPrice = value
	case domain.PlanStandard:
		cfg.Payment.StandardPrice = value
	case domain.PlanPremium:
		cfg.Payment.PremiumPrice = value
	default:
		b.respondEphemeral(i, "❌ Plano desconhecido.")
		return
	}
	if err := b.settings.Save(cfg); err != nil {
		b.logger.Error("settings save failed", "error", err)
		b.respondEphemeral(i, "❌ Não foi possível salvar a configuração.")
		return
	}

	b.emitAdminAction(userID(i), "price_changed", map[string]string{
		"plan":  string(plan),
		"price": fmt.Sprintf("%.2f", value),
	})
	b.respondEmbed(i, simpleEmbed("💰 Preço atualizado",
		fmt.Sprintf("O plano **%s** agora custa **R$ %.2f**. Sessões em andamento pagam o novo valor no momento do pagamento.", plan, value),
		colorSuccess), nil)
}

func (b *Bot) handleConfigToggle(i *discordgo.InteractionCreate, sub *discordgo.ApplicationCommandInteractionDataOption) {
	var option string
	for _, opt := range sub.Options {
		if opt.Name == "opcao" {
			option = opt.StringValue()
		}
	}

	cfg := b.settings.Load()
	var label string
	var state bool
	switch option {
	case "pix":
		cfg.Payment.PixEnabled = !cfg.Payment.PixEnabled
		label, state = "Pagamentos PIX", cfg.Payment.PixEnabled
	case "autodeploy":
		cfg.Payment.AutoDeploy = !cfg.Payment.AutoDeploy
		label, state = "Deploy automático", cfg.Payment.AutoDeploy
	case "paymentnotifications":
		cfg.Notifications.PaymentNotifications = !cfg.Notifications.PaymentNotifications
		label, state = "Notificações de pagamento", cfg.Notifications.PaymentNotifications
	case "adminnotifications":
		cfg.Notifications.AdminNotifications = !cfg.Notifications.AdminNotifications
		label, state = "Notificações administrativas", cfg.Notifications.AdminNotifications
	default:
		b.respondEphemeral(i, "❌ Opção desconhecida.")
		return
	}

	if err := b.settings.Save(cfg); err != nil {
		b.logger.Error("settings save failed", "error", err)
		b.respondEphemeral(i, "❌ Não foi possível salvar a configuração.")
		return
	}

	b.emitAdminAction(userID(i), "setting_toggled", map[string]string{
		"setting": option,
		"enabled": fmt.Sprintf("%t", state),
	})
	b.respondEmbed(i, simpleEmbed("⚙️ Configuração alterada",
		fmt.Sprintf("**%s**: %s", label, onOff(state)), colorSuccess), nil)
}

func (b *Bot) handleConfigTest(i *discordgo.InteractionCreate) {
	if err := b.svc.TestConnection(context.Background(), userID(i)); err != nil {
		b.respondEmbed(i, simpleEmbed("🔌 Teste de conexão",
			fmt.Sprintf("❌ A API de hospedagem não respondeu: %v", err), colorError), nil)
		return
	}
	b.respondEmbed(i, simpleEmbed("🔌 Teste de conexão",
		"✅ A API de hospedagem respondeu normalmente.", colorSuccess), nil)
}

func (b *Bot) emitAdminAction(uid, action string, extra map[string]string) {
	fields := map[string]string{"action": action, "user_id": uid}
	for k, v := range extra {
		fields[k] = v
	}
	b.notifier.Emit(context.Background(), adminlog.Event{Kind: adminlog.KindAdminAction, Fields: fields})
}
