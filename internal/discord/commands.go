package discord

import "github.com/bwmarrin/discordgo"

// commandDefinitions returns the slash commands the bot registers.
func commandDefinitions() []*discordgo.ApplicationCommand {
	appIDOption := func(required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "app",
			Description: "ID da aplicação",
			Required:    required,
		}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "deploy",
			Description: "Fazer deploy de uma aplicação na Square Cloud",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionAttachment,
					Name:        "arquivo",
					Description: "Arquivo ZIP da aplicação",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "plano",
					Description: "Plano de hospedagem",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Básico", Value: "basic"},
						{Name: "Padrão", Value: "standard"},
						{Name: "Premium", Value: "premium"},
					},
				},
			},
		},
		{
			Name:        "status",
			Description: "Ver o status de uma aplicação sua",
			Options:     []*discordgo.ApplicationCommandOption{appIDOption(true)},
		},
		{
			Name:        "list",
			Description: "Listar suas aplicações hospedadas",
		},
		{
			Name:        "delete",
			Description: "Deletar uma aplicação sua",
			Options:     []*discordgo.ApplicationCommandOption{appIDOption(true)},
		},
		{
			Name:        "restart",
			Description: "Reiniciar uma aplicação sua",
			Options:     []*discordgo.ApplicationCommandOption{appIDOption(true)},
		},
		{
			Name:        "logs",
			Description: "Ver os logs de uma aplicação sua",
			Options:     []*discordgo.ApplicationCommandOption{appIDOption(true)},
		},
		{
			Name:        "help",
			Description: "Ver os comandos disponíveis",
		},
		{
			Name:        "config",
			Description: "Configurações administrativas do bot",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Mostrar as configurações atuais",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "price",
					Description: "Alterar o preço de um plano",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "plano",
							Description: "Plano a alterar",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Básico", Value: "basic"},
								{Name: "Padrão", Value: "standard"},
								{Name: "Premium", Value: "premium"},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionNumber,
							Name:        "valor",
							Description: "Novo preço em reais",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "toggle",
					Description: "Ligar/desligar uma opção",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "opcao",
							Description: "Opção a alternar",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Pagamentos PIX", Value: "pix"},
								{Name: "Deploy automático", Value: "autodeploy"},
								{Name: "Notificações de pagamento", Value: "paymentnotifications"},
								{Name: "Notificações administrativas", Value: "adminnotifications"},
							},
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "test",
					Description: "Testar a conexão com a API de hospedagem",
				},
			},
		},
	}
}
