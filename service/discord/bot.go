// Package discord announces sales in a discord channel
package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/x-xyz/escrow/base/ctx"
	"github.com/x-xyz/escrow/domain"
	"github.com/x-xyz/escrow/domain/notification"
)

type Config struct {
	BotKey    string
	ChannelId string
	// Symbol and Decimals describe the payment unit
	Symbol   string
	Decimals int32
	// AssetUrl is formatted with the collection and token id, optional
	AssetUrl string
}

// embedSender is the part of *discordgo.Session the bot uses
type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
}

type bot struct {
	config  Config
	discord embedSender
}

func New(config Config) (notification.Subscriber, error) {
	discord, err := discordgo.New(fmt.Sprintf("Bot %s", config.BotKey))
	if err != nil {
		return nil, err
	}
	return newBot(config, discord), nil
}

func newBot(config Config, discord embedSender) *bot {
	return &bot{config, discord}
}

func (b *bot) Name() string {
	return "discord"
}

func (b *bot) Handle(c ctx.Ctx, e notification.Event) error {
	if e.Type != notification.TypeSold {
		return nil
	}

	msg := &discordgo.MessageEmbed{
		Title: "Item sold!",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Collection", Value: string(e.Collection)},
			{Name: "Token", Value: string(e.TokenId)},
			{Name: "Seller", Value: string(e.Seller)},
			{Name: "Buyer", Value: string(e.Buyer)},
			{Name: "Price", Value: fmt.Sprintf("%s %s", domain.FormatUnits(e.Price, b.config.Decimals).String(), b.config.Symbol)},
		},
	}
	if b.config.AssetUrl != "" {
		msg.Description = fmt.Sprintf(b.config.AssetUrl, e.Collection, e.TokenId)
	}

	if _, err := b.discord.ChannelMessageSendEmbed(b.config.ChannelId, msg); err != nil {
		c.WithField("err", err).Error("discord.ChannelMessageSendEmbed failed")
		return err
	}
	return nil
}
