package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/areahoodnigeria/client-app-sub001/internal/api"
	"github.com/areahoodnigeria/client-app-sub001/internal/domain"
	"github.com/areahoodnigeria/client-app-sub001/internal/models"
	"github.com/areahoodnigeria/client-app-sub001/internal/wallet"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxBankMatches caps the bank buttons offered for one search.
const maxBankMatches = 8

func (b *Bot) showWallet(ctx context.Context, chatID int64) {
	if b.requireAuth(ctx, chatID) == nil {
		return
	}
	w, err := wallet.New(b.session(chatID)).Balance(ctx)
	if err != nil {
		b.fail(chatID, "wallet", err)
		return
	}
	text := fmt.Sprintf("💰 Wallet\n\nAvailable: %s\nIn escrow: %s", naira(w.Balance), naira(w.PendingBalance))
	b.card(chatID, text, inline(tgbotapi.NewInlineKeyboardRow(
		button("🏦 Withdraw", "withdraw", ""),
		button("📜 History", "tx", "1"),
	)))
}

func (b *Bot) showTransactions(ctx context.Context, chatID int64, messageID, page int) {
	p, err := wallet.New(b.session(chatID)).Transactions(ctx, page, b.pageSize())
	if err != nil {
		b.fail(chatID, "transactions", err)
		return
	}
	if len(p.Items) == 0 {
		b.edit(chatID, messageID, "📜 No transactions yet.", nil)
		return
	}
	var sb strings.Builder
	sb.WriteString("📜 Transactions\n")
	for _, tx := range p.Items {
		fmt.Fprintf(&sb, "\n%s · %s %s", tx.CreatedAt.Day(), strings.ToUpper(tx.Type), naira(tx.Amount))
		if tx.Status != "" {
			fmt.Fprintf(&sb, " · %s", tx.Status)
		}
		if tx.Description != "" {
			fmt.Fprintf(&sb, "\n   %s", truncate(tx.Description, 80))
		}
	}
	sb.WriteString(pageFooter(p.Page, p.TotalPages))
	b.edit(chatID, messageID, sb.String(), inline(pager("tx", p)))
}

func (b *Bot) startWithdraw(ctx context.Context, chatID int64) string {
	if b.requireAuth(ctx, chatID) == nil {
		return ""
	}
	b.states.StartForm(ctx, chatID, StateWithdrawAmount, nil)
	b.send(chatID, "🏦 How much do you want to withdraw, in naira?", cancelKeyboard())
	return ""
}

func (b *Bot) handleWithdrawAmount(ctx context.Context, chatID int64, text string, state *domain.UserState) {
	amount, ok := wallet.ParseAmount(text)
	if !ok {
		b.send(chatID, "Enter an amount above zero, for example 15000:", cancelKeyboard())
		return
	}
	w, err := wallet.New(b.session(chatID)).Balance(ctx)
	if err != nil {
		b.states.ClearUserState(ctx, chatID)
		b.fail(chatID, "wallet", err)
		return
	}
	if amount > w.Balance {
		b.send(chatID, fmt.Sprintf("You can withdraw up to %s. Enter a smaller amount:", naira(w.Balance)), cancelKeyboard())
		return
	}
	b.states.SetStep(ctx, chatID, StateWithdrawBank, map[string]string{keyAmount: formatFloat(amount)})
	b.send(chatID, "Type the name of your bank (for example Access or GTBank):", cancelKeyboard())
}

func matchBanks(banks []models.Bank, query string) []models.Bank {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []models.Bank
	for _, bank := range banks {
		if strings.Contains(strings.ToLower(bank.Name), query) {
			out = append(out, bank)
			if len(out) == maxBankMatches {
				break
			}
		}
	}
	return out
}

func (b *Bot) handleWithdrawBank(ctx context.Context, chatID int64, text string, state *domain.UserState) {
	if text == "" {
		b.send(chatID, "Type the name of your bank:", cancelKeyboard())
		return
	}
	banks, err := wallet.New(b.session(chatID)).Banks(ctx)
	if err != nil {
		b.fail(chatID, "banks", err)
		return
	}
	matches := matchBanks(banks, text)
	if len(matches) == 0 {
		b.send(chatID, "No bank matches that name. Try again:", cancelKeyboard())
		return
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, bank := range matches {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(bank.Name, "bank", bank.Code)))
	}
	b.card(chatID, "Pick your bank:", inline(rows...))
}

func (b *Bot) pickBank(ctx context.Context, chatID int64, messageID int, code string) string {
	state := b.states.GetUserState(ctx, chatID)
	if state == nil || state.CurrentStep != StateWithdrawBank {
		return "This withdrawal has expired"
	}
	banks, err := wallet.New(b.session(chatID)).Banks(ctx)
	if err != nil {
		b.fail(chatID, "banks", err)
		return ""
	}
	name := code
	for _, bank := range banks {
		if bank.Code == code {
			name = bank.Name
			break
		}
	}
	b.states.SetStep(ctx, chatID, StateWithdrawAccount, map[string]string{keyBankCode: code, keyBankName: name})
	b.edit(chatID, messageID, "🏦 "+name, nil)
	b.send(chatID, fmt.Sprintf("Enter your %d-digit account number:", wallet.NUBANLength), cancelKeyboard())
	return ""
}

func (b *Bot) handleWithdrawAccount(ctx context.Context, chatID int64, text string, state *domain.UserState) {
	number := strings.ReplaceAll(text, " ", "")
	if !wallet.ValidAccountNumber(number) {
		b.send(chatID, fmt.Sprintf("The account number must be %d digits. Try again:", wallet.NUBANLength), cancelKeyboard())
		return
	}
	acc, err := wallet.New(b.session(chatID)).ResolveAccount(ctx, number, state.Get(keyBankCode))
	if err != nil {
		b.send(chatID, "⚠️ "+api.UserMessage(err)+"\nCheck the number and try again:", cancelKeyboard())
		return
	}
	b.states.SetStep(ctx, chatID, StateWithdrawConfirm, map[string]string{
		keyAccountNo:   acc.AccountNumber,
		keyAccountName: acc.AccountName,
	})
	text = fmt.Sprintf("Withdraw %s to\n%s\n%s · %s?",
		naira(state.GetFloat(keyAmount)), acc.AccountName, state.Get(keyBankName), acc.AccountNumber)
	b.card(chatID, text, inline(tgbotapi.NewInlineKeyboardRow(
		button("✅ Confirm", "wconfirm", ""),
		button("❌ Cancel", "cancel", ""),
	)))
}

func (b *Bot) confirmWithdraw(ctx context.Context, chatID int64, messageID int) string {
	state := b.states.GetUserState(ctx, chatID)
	if state == nil || state.CurrentStep != StateWithdrawConfirm {
		return "This withdrawal has expired"
	}
	b.states.ClearUserState(ctx, chatID)

	tx, err := wallet.New(b.session(chatID)).Withdraw(ctx, models.Withdrawal{
		Amount:        state.GetFloat(keyAmount),
		BankCode:      state.Get(keyBankCode),
		AccountNumber: state.Get(keyAccountNo),
		AccountName:   state.Get(keyAccountName),
	})
	if err != nil {
		b.edit(chatID, messageID, "❌ Withdrawal not sent.", nil)
		b.fail(chatID, "withdraw", err)
		return ""
	}

	text := fmt.Sprintf("✅ Withdrawal of %s requested.", naira(state.GetFloat(keyAmount)))
	if tx.Reference != "" {
		text += "\nReference: " + tx.Reference
	}
	b.edit(chatID, messageID, text, nil)
	b.send(chatID, "Funds usually arrive within one business day.", menuFor(b.auth(ctx, chatID)))
	return "Withdrawal requested"
}
