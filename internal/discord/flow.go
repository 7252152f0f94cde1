package discord

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/hostbr/deploybot/internal/domain"
	"github.com/hostbr/deploybot/internal/service/deploy"
)

// handleDeploy opens a deploy session from the uploaded archive and
// shows the configuration card.
func (b *Bot) handleDeploy(i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	var attachment *discordgo.MessageAttachment
	var plan domain.Plan
	for _, opt := range data.Options {
		switch opt.Name {
		case "arquivo":
			attachment = data.Resolved.Attachments[opt.Value.(string)]
		case "plano":
			plan = domain.Plan(opt.StringValue())
		}
	}
	if attachment == nil {
		b.respondEphemeral(i, "❌ Nenhum arquivo foi enviado.")
		return
	}

	artifact := domain.Artifact{
		URL:      attachment.URL,
		Filename: attachment.Filename,
		Size:     int64(attachment.Size),
	}
	sess, err := b.svc.StartSession(userID(i), b.ticketChannelID(i), artifact, plan)
	if err != nil {
		switch {
		case errors.Is(err, deploy.ErrBadExtension):
			b.respondEphemeral(i, "❌ Apenas arquivos ZIP são aceitos.")
		case errors.Is(err, deploy.ErrArtifactTooLarge):
			b.respondEphemeral(i, "❌ O arquivo excede o tamanho máximo permitido.")
		default:
			b.logger.Error("start session failed", "user_id", userID(i), "error", err)
			b.respondEphemeral(i, "❌ Não foi possível iniciar o deploy. Tente novamente.")
		}
		return
	}

	b.respondEmbed(i, sessionEmbed(sess), sessionButtons())
}

// ticketChannelID binds the session to the current channel only when it
// is a ticket channel. Deleting the ticket later cancels the payment.
func (b *Bot) ticketChannelID(i *discordgo.InteractionCreate) string {
	ch, err := b.session.State.Channel(i.ChannelID)
	if err != nil {
		ch, err = b.session.Channel(i.ChannelID)
	}
	if err != nil || ch == nil {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(ch.Name), strings.ToLower(b.cfg.TicketPrefix)) {
		return ch.ID
	}
	return ""
}

func sessionEmbed(sess *domain.DeploySession) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🚀 Deploy Square Cloud",
		Description: "Revise a configuração abaixo e siga para o pagamento quando estiver pronto.",
		Color:       colorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📦 Arquivo", Value: sess.Artifact.Filename, Inline: true},
			{Name: "📋 Plano", Value: string(sess.Plan), Inline: true},
			{Name: "💰 Valor", Value: fmt.Sprintf("R$ %.2f", sess.Price), Inline: true},
			{Name: "🏷️ Nome", Value: sess.Config.DisplayName, Inline: true},
			{Name: "🧠 Memória", Value: fmt.Sprintf("%d MB", sess.Config.MemoryMB), Inline: true},
			{Name: "⚙️ Versão", Value: sess.Config.Version, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: embedFooter},
	}
}

func sessionButtons() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Configurar",
					Style:    discordgo.SecondaryButton,
					CustomID: "deploy_configure",
					Emoji:    &discordgo.ComponentEmoji{Name: "⚙️"},
				},
				discordgo.Button{
					Label:    "Ir para pagamento",
					Style:    discordgo.SuccessButton,
					CustomID: "deploy_payment",
					Emoji:    &discordgo.ComponentEmoji{Name: "💳"},
				},
			},
		},
	}
}

// showConfigModal opens the app configuration modal pre-filled with the
// current session values.
func (b *Bot) showConfigModal(i *discordgo.InteractionCreate) {
	sess, err := b.svc.Session(userID(i))
	if err != nil {
		b.respondEphemeral(i, "❌ Sessão de deploy não encontrada. Use /deploy novamente.")
		return
	}

	err = b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "deploy_config",
			Title:    "Configurar aplicação",
			Components: []discordgo.MessageComponent{
				textInputRow("cfg_name", "Nome da aplicação", sess.Config.DisplayName, true, 30),
				textInputRow("cfg_description", "Descrição", sess.Config.Description, false, 50),
				textInputRow("cfg_memory", "Memória (MB, 256 a 1024)", strconv.Itoa(sess.Config.MemoryMB), true, 4),
				textInputRow("cfg_version", "Versão (recommended ou latest)", sess.Config.Version, false, 20),
			},
		},
	})
	if err != nil {
		b.logger.Warn("config modal failed", "error", err)
	}
}

func textInputRow(customID, label, value string, required bool, maxLength int) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:  customID,
				Label:     label,
				Style:     discordgo.TextInputShort,
				Value:     value,
				Required:  required,
				MaxLength: maxLength,
			},
		},
	}
}

// handleConfigModal applies the submitted configuration.
func (b *Bot) handleConfigModal(i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()

	memory, err := strconv.Atoi(modalValue(data, "cfg_memory"))
	if err != nil {
		b.respondEphemeral(i, "❌ Memória inválida: informe um número entre 256 e 1024.")
		return
	}
	cfg := domain.DeployConfig{
		DisplayName: modalValue(data, "cfg_name"),
		Description: modalValue(data, "cfg_description"),
		MemoryMB:    memory,
		Version:     modalValue(data, "cfg_version"),
	}
	if cfg.Version == "" {
		cfg.Version = "recommended"
	}

	uid := userID(i)
	if err := b.svc.Configure(uid, cfg); err != nil {
		b.respondEphemeral(i, fmt.Sprintf("❌ Configuração inválida: %v", err))
		return
	}
	sess, err := b.svc.Session(uid)
	if err != nil {
		b.respondEphemeral(i, "❌ Sessão de deploy não encontrada. Use /deploy novamente.")
		return
	}
	b.respondEmbed(i, sessionEmbed(sess), sessionButtons())
}

// showPayerModal opens the payer identity modal.
func (b *Bot) showPayerModal(i *discordgo.InteractionCreate) {
	if _, err := b.svc.Session(userID(i)); err != nil {
		b.respondEphemeral(i, "❌ Sessão de deploy não encontrada. Use /deploy novamente.")
		return
	}

	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "deploy_userdata",
			Title:    "Dados do pagador",
			Components: []discordgo.MessageComponent{
				textInputRow("payer_name", "Nome completo", "", true, 60),
				textInputRow("payer_email", "E-mail", "", true, 100),
				textInputRow("payer_cpf", "CPF (somente números)", "", true, 11),
			},
		},
	})
	if err != nil {
		b.logger.Warn("payer modal failed", "error", err)
	}
}

// handlePayerModal creates the PIX payment and shows the QR card. The
// reply is then kept updated by the polling surface and the flow hooks.
func (b *Bot) handlePayerModal(i *discordgo.InteractionCreate) {
	payer := domain.PayerIdentity{
		FullName: modalValue(i.ModalSubmitData(), "payer_name"),
		Email:    modalValue(i.ModalSubmitData(), "payer_email"),
		TaxID:    modalValue(i.ModalSubmitData(), "payer_cpf"),
	}
	if err := payer.Validate(); err != nil {
		b.respondEphemeral(i, fmt.Sprintf("❌ Dados inválidos: %v", err))
		return
	}

	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		b.logger.Warn("payment defer failed", "error", err)
		return
	}

	uid := userID(i)
	interaction := i.Interaction
	surface := &replySurface{bot: b, interaction: interaction}

	// The hooks run on the polling goroutine; the id is only known
	// after creation, so it travels through a guarded reference.
	ref := &pixRef{}

	intent, err := b.svc.BeginPayment(context.Background(), uid, payer, surface, b.flowHooks(interaction, uid, ref))
	if err != nil {
		content := "❌ Não foi possível criar o pagamento. Tente novamente."
		if errors.Is(err, deploy.ErrPixDisabled) {
			content = "❌ Pagamentos PIX estão temporariamente desativados."
		}
		b.logger.Error("begin payment failed", "user_id", uid, "error", err)
		if editErr := b.editReply(interaction, content, nil, nil); editErr != nil {
			b.logger.Warn("payment error reply failed", "error", editErr)
		}
		return
	}

	ref.set(intent.ID)
	b.pixCodes.Store(intent.ID, intent.QRCode)
	embed := paymentEmbed(intent)
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Copiar código PIX",
					Style:    discordgo.SecondaryButton,
					CustomID: "deploy_copy_pix_" + intent.ID,
					Emoji:    &discordgo.ComponentEmoji{Name: "📋"},
				},
			},
		},
	}
	if err := b.editReply(interaction, "⏳ Aguardando pagamento...", []*discordgo.MessageEmbed{embed}, components); err != nil {
		b.logger.Warn("payment reply failed", "error", err)
	}
}

func paymentEmbed(intent domain.PaymentIntent) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "💳 Pagamento PIX",
		Description: fmt.Sprintf("Escaneie o QR code ou use o código copia e cola:\n```%s```", intent.QRCode),
		Color:       colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💰 Valor", Value: fmt.Sprintf("R$ %.2f", intent.Amount), Inline: true},
			{Name: "🧾 ID", Value: intent.ID, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: embedFooter},
	}
	if intent.QRCode != "" {
		embed.Image = &discordgo.MessageEmbedImage{
			URL: "https://api.qrserver.com/v1/create-qr-code/?size=256x256&data=" + url.QueryEscape(intent.QRCode),
		}
	}
	return embed
}

// pixRef hands the payment id from the interaction goroutine to the
// polling hooks once the payment exists.
type pixRef struct {
	mu sync.Mutex
	id string
}

func (r *pixRef) set(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.id = id
}

func (r *pixRef) get() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id
}

// evictPixCode drops the stored copy-paste code for the referenced
// payment. A nil or still-unset reference is a no-op.
func (b *Bot) evictPixCode(ref *pixRef) {
	if ref == nil {
		return
	}
	if id := ref.get(); id != "" {
		b.pixCodes.Delete(id)
	}
}

// flowHooks builds the progress callbacks that rewrite the payment
// reply as the flow advances. They run on the polling goroutine.
func (b *Bot) flowHooks(interaction *discordgo.Interaction, uid string, ref *pixRef) deploy.Hooks {
	edit := func(content string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) {
		var embeds []*discordgo.MessageEmbed
		if embed != nil {
			embeds = append(embeds, embed)
		}
		if err := b.editReply(interaction, content, embeds, components); err != nil {
			b.logger.Warn("flow reply update failed", "user_id", uid, "error", err)
		}
	}
	return deploy.Hooks{
		PaymentApproved: func() {
			b.evictPixCode(ref)
			edit("", simpleEmbed("✅ Pagamento aprovado", "Iniciando o deploy da sua aplicação...", colorSuccess), nil)
		},
		DeploySucceeded: func(app domain.Application) {
			edit("", &discordgo.MessageEmbed{
				Title:       "🚀 Deploy concluído",
				Description: "Sua aplicação está no ar!",
				Color:       colorSuccess,
				Fields: []*discordgo.MessageEmbedField{
					{Name: "🆔 ID", Value: app.ID, Inline: true},
					{Name: "🏷️ Nome", Value: app.Name, Inline: true},
				},
				Footer: &discordgo.MessageEmbedFooter{Text: embedFooter},
			}, nil)
		},
		DeployFailed: func(err error, canRetry bool) {
			if !canRetry {
				edit("", simpleEmbed("❌ Falha no deploy",
					"O deploy falhou e não pôde ser concluído. A equipe foi notificada; entre em contato com o suporte informando o pagamento.",
					colorError), nil)
				return
			}
			edit("", simpleEmbed("⚠️ Falha temporária no deploy",
				"O pagamento foi confirmado, mas a plataforma de hospedagem apresentou instabilidade. Você pode tentar novamente.",
				colorWarning), []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{Label: "Tentar novamente", Style: discordgo.PrimaryButton, CustomID: "deploy_retry", Emoji: &discordgo.ComponentEmoji{Name: "🔄"}},
						discordgo.Button{Label: "Cancelar", Style: discordgo.DangerButton, CustomID: "deploy_cancel_retry"},
					},
				},
			})
		},
		PaymentTimedOut: func() {
			b.evictPixCode(ref)
			edit("", simpleEmbed("⏰ Tempo esgotado",
				"O pagamento não foi confirmado a tempo e foi cancelado. Use /deploy para começar de novo.",
				colorWarning), nil)
		},
	}
}

// handleRetry re-runs a deploy after a retry-eligible failure.
func (b *Bot) handleRetry(i *discordgo.InteractionCreate) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		b.logger.Warn("retry defer failed", "error", err)
		return
	}

	uid := userID(i)
	if err := b.svc.RetryDeploy(context.Background(), uid, b.flowHooks(i.Interaction, uid, nil)); err != nil {
		if editErr := b.editReply(i.Interaction, "❌ Os dados do deploy expiraram. Entre em contato com o suporte.", nil, nil); editErr != nil {
			b.logger.Warn("retry reply failed", "error", editErr)
		}
	}
}

// handleCancelRetry abandons a retry-eligible failure.
func (b *Bot) handleCancelRetry(i *discordgo.InteractionCreate) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		b.logger.Warn("cancel defer failed", "error", err)
		return
	}

	if err := b.svc.CancelRetry(userID(i)); err != nil {
		b.logger.Warn("cancel retry failed", "user_id", userID(i), "error", err)
	}
	embed := simpleEmbed("🚫 Deploy cancelado",
		"O deploy foi cancelado. O pagamento já processado não é revertido automaticamente; procure o suporte se precisar de ajuda.",
		colorError)
	if err := b.editReply(i.Interaction, "", []*discordgo.MessageEmbed{embed}, nil); err != nil {
		b.logger.Warn("cancel reply failed", "error", err)
	}
}

// handleCopyPix replies with the raw PIX code for manual copy.
func (b *Bot) handleCopyPix(i *discordgo.InteractionCreate, paymentID string) {
	code, ok := b.pixCodes.Load(paymentID)
	if !ok {
		b.respondEphemeral(i, "❌ Este pagamento não está mais ativo.")
		return
	}
	b.respondEphemeral(i, fmt.Sprintf("📋 Código PIX copia e cola:\n```%s```", code))
}
