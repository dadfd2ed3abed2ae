package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-wellfound-scraper/internal/domain"
)

// maxRolesInMessage caps how many roles one notification lists.
const maxRolesInMessage = 10

const sendTimeout = 10 * time.Second

// sender is the part of tgbotapi.BotAPI the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts a summary of every finished job to one chat.
type TelegramNotifier struct {
	bot    sender
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	return newTelegramNotifier(token, chatID, tgbotapi.APIEndpoint)
}

func newTelegramNotifier(token string, chatID int64, endpoint string) (*TelegramNotifier, error) {
	// Send takes no context, the client timeout is what bounds it
	client := &http.Client{Timeout: sendTimeout}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	//turn this on in case of debug
	//bot.Debug = true

	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (t *TelegramNotifier) JobFinished(ctx context.Context, job domain.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, FormatJob(job))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!", "\\", "\\\\",
	)
	return replacer.Replace(text)
}

// FormatJob renders a finished job as a MarkdownV2 message.
func FormatJob(job domain.Job) string {
	var b strings.Builder

	var listing domain.Listing
	if job.Result != nil && job.Result.JobData != nil {
		listing = *job.Result.JobData
	}

	search := fmt.Sprintf("%s @ %s", job.Details.Role, job.Details.Location)
	switch {
	case job.Result == nil:
		fmt.Fprintf(&b, "⏳ *%s*\n", escapeMarkdown(search))
	case job.Result.Outcome == domain.OutcomeListing:
		fmt.Fprintf(&b, "🔥 *%s*\n", escapeMarkdown(search))
		fmt.Fprintf(&b, "🏢 %d companies, %d roles\n", len(listing), listing.RoleCount())
	case job.Result.Outcome == domain.OutcomeNoResults:
		fmt.Fprintf(&b, "📭 *%s*\n%s\n", escapeMarkdown(search), escapeMarkdown(job.Result.Error))
	default:
		fmt.Fprintf(&b, "⚠️ *%s*\n", escapeMarkdown(search))
		fmt.Fprintf(&b, "❌ %s: %s\n", escapeMarkdown(job.Result.ErrorKind), escapeMarkdown(job.Result.Error))
	}

	if job.Result != nil && job.Result.Outcome == domain.OutcomeListing {
		listed := 0
	companies:
		for _, company := range listing {
			for _, role := range company.Roles {
				if listed == maxRolesInMessage {
					fmt.Fprintf(&b, "… and %d more\n", listing.RoleCount()-listed)
					break companies
				}
				fmt.Fprintf(&b, "• %s, %s", escapeMarkdown(role.Title), escapeMarkdown(company.Name))
				if role.CompensationLabel != domain.NotAvailable {
					fmt.Fprintf(&b, " 💰 %s", escapeMarkdown(role.CompensationLabel))
				}
				b.WriteString("\n")
				listed++
			}
		}
	}

	fmt.Fprintf(&b, "🆔 `%s`", job.ID)
	return b.String()
}

// Nop discards notifications.
type Nop struct{}

func (Nop) JobFinished(context.Context, domain.Job) error { return nil }
