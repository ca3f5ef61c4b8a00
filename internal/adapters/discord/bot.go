package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tradeTrackerBot/internal/app"
	"tradeTrackerBot/internal/domain"
	"tradeTrackerBot/internal/ports"

	"github.com/bwmarrin/discordgo"
)

// Custom ID prefixes for the interaction flow.
const (
	exchangeButtonID  = "exchange_"
	directionButtonID = "direction_"
	editButtonID      = "edit_"
	closeButtonID     = "close_"
	tradeModalID      = "trade_modal_"
)

const buttonsPerRow = 5

// Bot wires the Discord gateway to the trade service: it registers the /trade
// slash command and dispatches button, modal and close interactions.
type Bot struct {
	session *discordgo.Session
	service *app.TradeService
	logger  ports.Logger
}

// NewBot creates the bot over a configured session. Handlers are attached
// here; the session is opened by Start.
func NewBot(session *discordgo.Session, service *app.TradeService, logger ports.Logger) (*Bot, error) {
	if session == nil || service == nil || logger == nil {
		return nil, fmt.Errorf("session, service and logger are required for Discord bot")
	}
	b := &Bot{session: session, service: service, logger: logger}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsGuildMembers
	return b, nil
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	ctx := context.Background()
	b.logger.Info(ctx, "Logged in", map[string]interface{}{"user": r.User.Username})

	cmd := &discordgo.ApplicationCommand{
		Name:        "trade",
		Description: "Create or edit a trade",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "action",
				Description: "Create or edit a trade",
				Required:    true,
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Create", Value: "create"},
					{Name: "Edit", Value: "edit"},
				},
			},
		},
	}
	if _, err := s.ApplicationCommandCreate(r.User.ID, "", cmd); err != nil {
		b.logger.Error(ctx, err, "Failed to register /trade command")
	}
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name == "trade" {
			b.handleTradeCommand(ctx, s, i)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		switch {
		case strings.HasPrefix(customID, exchangeButtonID):
			b.handleExchangeButton(ctx, s, i, strings.TrimPrefix(customID, exchangeButtonID))
		case strings.HasPrefix(customID, directionButtonID):
			b.handleDirectionButton(ctx, s, i, strings.TrimPrefix(customID, directionButtonID))
		case strings.HasPrefix(customID, editButtonID):
			b.handleEditButton(ctx, s, i, strings.TrimPrefix(customID, editButtonID))
		case strings.HasPrefix(customID, closeButtonID):
			b.handleCloseButton(ctx, s, i, strings.TrimPrefix(customID, closeButtonID))
		}
	case discordgo.InteractionModalSubmit:
		if strings.HasPrefix(i.ModalSubmitData().CustomID, tradeModalID) {
			b.handleModalSubmit(ctx, s, i)
		}
	}
}

// handleTradeCommand answers /trade: the create flow starts with exchange
// selection, the edit flow lists the caller's open trades in this channel.
func (b *Bot) handleTradeCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.deferEphemeral(ctx, s, i) {
		return
	}
	action := i.ApplicationCommandData().Options[0].StringValue()

	if action == "edit" {
		identity := app.Identity{UserID: interactionUserID(i), ChannelID: i.ChannelID}
		trades, err := b.service.OpenTradesFor(ctx, identity)
		if err != nil {
			b.editReply(ctx, s, i, userMessage(err), nil)
			return
		}
		if len(trades) == 0 {
			b.editReply(ctx, s, i, "No active trades found to edit.", nil)
			return
		}

		var rows []discordgo.MessageComponent
		for start := 0; start < len(trades); start += buttonsPerRow {
			end := start + buttonsPerRow
			if end > len(trades) {
				end = len(trades)
			}
			row := discordgo.ActionsRow{}
			for _, trade := range trades[start:end] {
				row.Components = append(row.Components, discordgo.Button{
					Label: fmt.Sprintf("%s %s on %s",
						trade.Ticker, strings.ToUpper(string(trade.Direction)), trade.Exchange),
					Style:    discordgo.PrimaryButton,
					CustomID: editButtonID + trade.ID,
				})
			}
			rows = append(rows, row)
		}
		b.editReply(ctx, s, i, "Select the trade you want to edit:", rows)
		return
	}

	row := discordgo.ActionsRow{}
	for _, exchange := range domain.SupportedExchanges {
		row.Components = append(row.Components, discordgo.Button{
			Label:    capitalize(string(exchange)),
			Style:    discordgo.PrimaryButton,
			CustomID: exchangeButtonID + string(exchange),
		})
	}
	b.editReply(ctx, s, i, "Select the exchange for your new trade:", []discordgo.MessageComponent{row})
}

// handleExchangeButton follows up with the direction choice.
func (b *Bot) handleExchangeButton(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, exchange string) {
	if !b.deferEphemeral(ctx, s, i) {
		return
	}
	row := discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Long",
				Style:    discordgo.SuccessButton,
				CustomID: fmt.Sprintf("%slong_%s", directionButtonID, exchange),
			},
			discordgo.Button{
				Label:    "Short",
				Style:    discordgo.DangerButton,
				CustomID: fmt.Sprintf("%sshort_%s", directionButtonID, exchange),
			},
		},
	}
	b.editReply(ctx, s, i, fmt.Sprintf("Select trade direction for %s:", exchange), []discordgo.MessageComponent{row})
}

// handleDirectionButton opens the trade details modal. No deferral here: the
// modal must be the immediate response to the button.
func (b *Bot) handleDirectionButton(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, rest string) {
	parts := strings.SplitN(rest, "_", 2)
	if len(parts) != 2 {
		return
	}
	direction, exchange := parts[0], parts[1]
	modalCustomID := fmt.Sprintf("%s%s_%s", tradeModalID, exchange, direction)
	title := fmt.Sprintf("Enter Trade Details for %s %s", exchange, direction)
	b.showTradeModal(ctx, s, i, modalCustomID, title, nil)
}

// handleEditButton opens the modal prefilled with the selected trade.
func (b *Bot) handleEditButton(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, tradeID string) {
	trade, err := b.service.Find(ctx, tradeID)
	if err != nil {
		b.respondEphemeral(ctx, s, i, userMessage(err))
		return
	}
	modalCustomID := fmt.Sprintf("%s%s_%s_%s", tradeModalID, trade.Exchange, trade.Direction, trade.ID)
	title := fmt.Sprintf("Edit Trade %s %s", trade.Ticker, strings.ToUpper(string(trade.Direction)))
	b.showTradeModal(ctx, s, i, modalCustomID, title, trade)
}

// showTradeModal responds with the five-field trade form. When prefill is
// non-nil the current values are filled in for editing.
func (b *Bot) showTradeModal(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, customID, title string, prefill *domain.Trade) {
	value := func(f func(*domain.Trade) string) string {
		if prefill == nil {
			return ""
		}
		return f(prefill)
	}
	inputs := []struct {
		id, label, val string
	}{
		{"ticker", "Crypto Ticker (e.g., BTCUSDT)", value(func(t *domain.Trade) string { return t.Ticker })},
		{"leverage", "Leverage (e.g., 10)", value(func(t *domain.Trade) string { return formatFloat(t.Leverage) })},
		{"entryPrice", "Your Entry Price", value(func(t *domain.Trade) string { return formatFloat(t.EntryPrice) })},
		{"stopLoss", "Stop Loss Price", value(func(t *domain.Trade) string { return formatFloat(t.StopLoss) })},
		{"takeProfit", "Take Profit Price", value(func(t *domain.Trade) string { return formatFloat(t.TakeProfit) })},
	}

	components := make([]discordgo.MessageComponent, 0, len(inputs))
	for _, in := range inputs {
		components = append(components, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID: in.id,
					Label:    in.label,
					Style:    discordgo.TextInputShort,
					Value:    in.val,
					Required: true,
				},
			},
		})
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   customID,
			Title:      title,
			Components: components,
		},
	})
	if err != nil {
		b.logger.Error(ctx, err, "Failed to show trade modal", map[string]interface{}{"customID": customID})
	}
}

// handleModalSubmit runs the create/edit lifecycle from the submitted form.
func (b *Bot) handleModalSubmit(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.deferEphemeral(ctx, s, i) {
		return
	}
	data := i.ModalSubmitData()

	// trade_modal_<exchange>_<direction>[_<tradeID>]
	parts := strings.SplitN(strings.TrimPrefix(data.CustomID, tradeModalID), "_", 3)
	if len(parts) < 2 {
		b.editReply(ctx, s, i, "Something went wrong with the trade form. Please try again.", nil)
		return
	}
	exchange := domain.Exchange(parts[0])
	direction := domain.Direction(parts[1])
	editing := len(parts) == 3

	raw := app.RawTradeForm{
		Ticker:     modalValue(data, "ticker"),
		Leverage:   modalValue(data, "leverage"),
		EntryPrice: modalValue(data, "entryPrice"),
		StopLoss:   modalValue(data, "stopLoss"),
		TakeProfit: modalValue(data, "takeProfit"),
	}
	form, err := app.ParseTradeForm(raw, exchange, direction)
	if err != nil {
		b.editReply(ctx, s, i, userMessage(err), nil)
		return
	}

	identity := app.Identity{UserID: interactionUserID(i), ChannelID: i.ChannelID}
	result, err := b.service.CreateOrEdit(ctx, identity, form)
	switch {
	case err == nil:
		if editing || !result.Created {
			b.editReply(ctx, s, i, "Trade updated successfully!", nil)
		} else {
			b.editReply(ctx, s, i, "Trade created successfully with your specified entry price! I will update the status periodically.", nil)
		}
	case errors.Is(err, ports.ErrRenderFailed):
		b.editReply(ctx, s, i, "Trade saved, but failed to send or update the trade message. Check bot permissions.", nil)
	default:
		b.editReply(ctx, s, i, userMessage(err), nil)
	}
}

// handleCloseButton closes a trade at the current quote, gated on the
// Manage Roles permission.
func (b *Bot) handleCloseButton(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, tradeID string) {
	if !b.deferEphemeral(ctx, s, i) {
		return
	}

	_, err := b.service.Close(ctx, tradeID, isModerator(i))
	switch {
	case err == nil:
		b.editReply(ctx, s, i, "Trade closed successfully!", nil)
	case errors.Is(err, ports.ErrRenderFailed):
		b.editReply(ctx, s, i, "Trade closed, but failed to update the message. Check bot permissions.", nil)
	default:
		b.editReply(ctx, s, i, userMessage(err), nil)
	}
}

// --- Helpers ---

// userMessage maps service errors onto distinct user-facing replies.
func userMessage(err error) string {
	switch {
	case errors.Is(err, ports.ErrValidation):
		return "Invalid input. Please enter numeric values for leverage, entry price, stop loss, and take profit; leverage and entry price must be positive."
	case errors.Is(err, ports.ErrQuoteUnavailable), errors.Is(err, ports.ErrExchangeUnsupported):
		return "Failed to fetch the current price. The exchange API may be slow or the ticker is invalid."
	case errors.Is(err, ports.ErrPermissionDenied):
		return "Only moderators can close positions."
	case errors.Is(err, ports.ErrNotFound):
		return "No active trade found or trade already closed."
	default:
		return "Something went wrong. Please try again later."
	}
}

// isModerator reports whether the interaction member holds Manage Roles.
// Interactions outside a guild carry no member and are never moderators.
func isModerator(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	return i.Member.Permissions&discordgo.PermissionManageRoles != 0
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// modalValue extracts one text input value from a modal submission.
func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			input, ok := component.(*discordgo.TextInput)
			if ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}

// deferEphemeral acknowledges the interaction so slow quote calls do not hit
// the 3-second response deadline. Returns false when the deferral itself
// failed and the interaction is unusable.
func (b *Bot) deferEphemeral(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		b.logger.Error(ctx, err, "Failed to defer interaction")
		return false
	}
	return true
}

func (b *Bot) editReply(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, content string, components []discordgo.MessageComponent) {
	edit := &discordgo.WebhookEdit{Content: &content}
	if components != nil {
		edit.Components = &components
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, edit); err != nil {
		b.logger.Error(ctx, err, "Failed to edit interaction reply")
	}
}

func (b *Bot) respondEphemeral(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content, Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		b.logger.Error(ctx, err, "Failed to respond to interaction")
	}
}
