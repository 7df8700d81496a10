package telegram

import (
	"context"
	"fmt"
	"html"

	tele "gopkg.in/telebot.v3"

	"github.com/nikita-ursulenko/nail-mastery-hub-sub001/internal/model"
)

// Bot posts back-office notifications to the admin chat. It never polls for
// updates.
type Bot struct {
	bot    *tele.Bot
	chatID tele.ChatID
}

func NewBot(token string, adminChatID int64) (*Bot, error) {
	pref := tele.Settings{
		Token:   token,
		Offline: true,
	}

	bot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		bot:    bot,
		chatID: tele.ChatID(adminChatID),
	}, nil
}

func (b *Bot) SendMessage(text string) error {
	_, err := b.bot.Send(b.chatID, text, tele.ModeHTML)
	return err
}

// WithdrawalRequested tells the admins a partner is waiting for a payout.
func (b *Bot) WithdrawalRequested(_ context.Context, w *model.Withdrawal) error {
	return b.SendMessage(withdrawalRequestedText(w))
}

func withdrawalRequestedText(w *model.Withdrawal) string {
	text := fmt.Sprintf(`💸 <b>New withdrawal request</b>

Amount: %s
Partner: <code>%s</code>
Request: <code>%s</code>
Payment details: %s`,
		w.Amount.StringFixed(2),
		w.PartnerID,
		w.ID,
		html.EscapeString(w.PaymentDetails),
	)
	if w.Contact != nil && *w.Contact != "" {
		text += "\nContact: " + html.EscapeString(*w.Contact)
	}
	return text
}
