package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tradeTrackerBot/internal/domain"
	"tradeTrackerBot/internal/ports"

	"github.com/bwmarrin/discordgo"
)

const (
	colorClosed      = 0xff0000
	colorPositiveROE = 0x00ff00
	colorNegativeROE = 0xffff00
)

// Renderer implements ports.Renderer by sending or editing a Discord embed in
// the trade's channel. Closed trades render without the close button.
type Renderer struct {
	session *discordgo.Session
	logger  ports.Logger
}

// NewRenderer creates a Discord renderer over an open session.
func NewRenderer(session *discordgo.Session, logger ports.Logger) (*Renderer, error) {
	if session == nil || logger == nil {
		return nil, fmt.Errorf("session and logger are required for Discord renderer")
	}
	return &Renderer{session: session, logger: logger}, nil
}

// Render creates the trade message on first call and edits it afterwards.
func (r *Renderer) Render(ctx context.Context, trade *domain.Trade, price float64) (string, error) {
	embed := buildTradeEmbed(trade, price)
	components := buildTradeComponents(trade)

	if trade.MessageID != nil {
		edit := discordgo.NewMessageEdit(trade.ChannelID, *trade.MessageID)
		edit.Embeds = &[]*discordgo.MessageEmbed{embed}
		edit.Components = &components
		if _, err := r.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
			return "", fmt.Errorf("edit message %s in channel %s: %w: %w",
				*trade.MessageID, trade.ChannelID, ports.ErrRenderFailed, err)
		}
		return *trade.MessageID, nil
	}

	msg, err := r.session.ChannelMessageSendComplex(trade.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("send message to channel %s: %w: %w", trade.ChannelID, ports.ErrRenderFailed, err)
	}
	return msg.ID, nil
}

// buildTradeEmbed renders the trade summary. The price argument is the close
// price for closed trades and the latest quote otherwise.
func buildTradeEmbed(trade *domain.Trade, price float64) *discordgo.MessageEmbed {
	roe := domain.ROE(trade.EntryPrice, price, trade.Leverage, trade.Direction)

	status := "Active"
	priceLabel := "Current Price"
	roeLabel := "Current ROE"
	color := colorPositiveROE
	if roe < 0 {
		color = colorNegativeROE
	}
	if trade.Closed {
		status = "Closed"
		priceLabel = "Close Price"
		roeLabel = "Final ROE"
		color = colorClosed
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Trade %s", capitalize(string(trade.Direction)), status),
		Description: fmt.Sprintf("Trade details for <@%s>", trade.UserID),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Ticker", Value: trade.Ticker, Inline: true},
			{Name: "Exchange", Value: string(trade.Exchange), Inline: true},
			{Name: "Leverage", Value: formatFloat(trade.Leverage), Inline: true},
			{Name: "Entry Price", Value: formatFloat(trade.EntryPrice), Inline: true},
			{Name: priceLabel, Value: formatFloat(price), Inline: true},
			{Name: "Stop Loss", Value: formatFloat(trade.StopLoss), Inline: true},
			{Name: "Take Profit", Value: formatFloat(trade.TakeProfit), Inline: true},
			{Name: roeLabel, Value: fmt.Sprintf("%.2f%%", roe), Inline: true},
			{Name: "Last Updated", Value: time.Now().UTC().Format("2006-01-02 15:04:05 MST"), Inline: true},
		},
	}
}

// buildTradeComponents returns the close button for open trades and nothing
// for closed ones.
func buildTradeComponents(trade *domain.Trade) []discordgo.MessageComponent {
	if trade.Closed {
		return []discordgo.MessageComponent{}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Close Position",
					Style:    discordgo.DangerButton,
					CustomID: closeButtonID + trade.ID,
				},
			},
		},
	}
}

func formatFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.8f", v), "0"), ".")
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
