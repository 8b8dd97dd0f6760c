package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"minebet/events"
	"minebet/models"
	"minebet/service"
)

// Config holds bot configuration
type Config struct {
	Token         string
	AdminID       int64
	MinStake      int64
	MinWithdrawal int64
}

// actionCooldown throttles repeated taps per user.
const actionCooldown = time.Second

type Bot struct {
	config         Config
	api            *tgbotapi.BotAPI
	ledgerService  service.LedgerService
	requestService service.RequestService
	sessionService service.SessionService
	eventBus       *events.Bus

	mu              sync.Mutex
	lastAction      map[int64]time.Time
	pendingDeposits map[int64]int64 // userID -> amount awaiting a receipt photo
}

func New(config Config, ledgerService service.LedgerService, requestService service.RequestService, sessionService service.SessionService, eventBus *events.Bus) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating telegram session: %w", err)
	}

	bot := &Bot{
		config:          config,
		api:             api,
		ledgerService:   ledgerService,
		requestService:  requestService,
		sessionService:  sessionService,
		eventBus:        eventBus,
		lastAction:      make(map[int64]time.Time),
		pendingDeposits: make(map[int64]int64),
	}

	// Tell users their request was decided as soon as the decision commits.
	eventBus.Subscribe(events.EventTypeRequestDecided, func(ctx context.Context, event events.Event) {
		if decided, ok := event.(events.RequestDecidedEvent); ok {
			bot.notifyRequestDecided(decided)
		}
	})

	log.WithField("username", api.Self.UserName).Info("telegram bot authorized")
	return bot, nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	updates := b.api.GetUpdatesChan(updateConfig)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("panic in update handler: %v", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	// A photo while a deposit amount is pending is a payment receipt.
	if len(message.Photo) > 0 {
		if amount, ok := b.takePendingDeposit(userID); ok {
			b.handleDepositReceipt(ctx, message, amount)
			return
		}
	}

	if !message.IsCommand() {
		return
	}

	switch message.Command() {
	case "start":
		b.handleStart(ctx, message)
	case "admin":
		b.handleAdminPanel(message)
	case "addbalance":
		b.handleAddBalance(ctx, message)
	case "setbalance":
		b.handleSetBalance(ctx, message)
	case "userinfo":
		b.handleUserInfo(ctx, message)
	case "allusers":
		b.handleAllUsers(ctx, message)
	case "message":
		b.handleMessageUser(message)
	}
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID
	data := callback.Data

	if !b.allowAction(userID) {
		b.answerCallback(callback.ID, "⏳ Please wait...")
		return
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"data":   data,
	}).Debug("callback received")

	switch {
	case data == "main_menu":
		b.showMainMenu(ctx, callback)
	case data == "play_game":
		b.handleStartGame(ctx, callback)
	case data == "cashout":
		b.handleCashout(ctx, callback)
	case data == "predict":
		b.answerCallbackAlert(callback.ID, "🔮 Prediction: Try random tiles!")
	case data == "deposit_menu":
		b.showDepositMenu(callback)
	case data == "withdraw_menu":
		b.showWithdrawMenu(callback)
	case data == "show_stats":
		b.showStats(ctx, callback)
	case data == "show_help":
		b.showHelp(callback)
	case strings.HasPrefix(data, "open_"):
		b.handleTileClick(ctx, callback, data)
	case strings.HasPrefix(data, "opened_"):
		b.answerCallback(callback.ID, "✅ Already opened!")
	case strings.HasPrefix(data, "deposit_"):
		b.handleDepositAmount(callback, data)
	case strings.HasPrefix(data, "withdraw_"):
		b.handleWithdrawAmount(ctx, callback, data)
	case strings.HasPrefix(data, "admin_"):
		b.handleAdminCallback(ctx, callback, data)
	case strings.HasPrefix(data, "approve_") || strings.HasPrefix(data, "reject_"):
		b.handleRequestDecision(ctx, callback, data)
	}
}

// allowAction enforces the per-user action cooldown.
func (b *Bot) allowAction(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if last, ok := b.lastAction[userID]; ok && now.Sub(last) < actionCooldown {
		return false
	}
	b.lastAction[userID] = now
	return true
}

func (b *Bot) setPendingDeposit(userID, amount int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pendingDeposits[userID] = amount
}

func (b *Bot) takePendingDeposit(userID int64) (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	amount, ok := b.pendingDeposits[userID]
	if ok {
		delete(b.pendingDeposits, userID)
	}
	return amount, ok
}

func (b *Bot) isAdmin(userID int64) bool {
	return userID == b.config.AdminID
}

// notifyRequestDecided messages the user after an admin decision commits.
func (b *Bot) notifyRequestDecided(event events.RequestDecidedEvent) {
	var text string
	switch {
	case event.Kind == models.RequestKindDeposit && event.Approved:
		text = fmt.Sprintf("✅ Deposit Approved\n\n💰 Amount: %s\n📋 Request ID: #%d", models.FormatKobo(event.Amount), event.RequestID)
	case event.Kind == models.RequestKindDeposit:
		text = fmt.Sprintf("❌ Deposit Rejected\n\n💰 Amount: %s\n📋 Request ID: #%d", models.FormatKobo(event.Amount), event.RequestID)
	case event.Kind == models.RequestKindWithdrawal && event.Approved:
		text = fmt.Sprintf("✅ Withdrawal Approved\n\n💰 Amount: %s\n📋 Request ID: #%d\n\nYour payment is on the way.", models.FormatKobo(event.Amount), event.RequestID)
	default:
		text = fmt.Sprintf("❌ Withdrawal Rejected\n\n💰 Amount: %s has been returned to your balance.\n📋 Request ID: #%d", models.FormatKobo(event.Amount), event.RequestID)
	}

	b.send(tgbotapi.NewMessage(event.UserID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.WithError(err).Warn("failed to send telegram message")
	}
}

func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.WithError(err).Warn("failed to answer callback")
	}
}

func (b *Bot) answerCallbackAlert(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(callbackID, text)); err != nil {
		log.WithError(err).Warn("failed to answer callback")
	}
}

func (b *Bot) editMessage(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) {
	if markup != nil {
		b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *markup))
		return
	}
	b.send(tgbotapi.NewEditMessageText(chatID, messageID, text))
}
