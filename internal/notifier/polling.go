package notifier

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	pollTimeout  = 30 * time.Second
	pollBackoff  = 5 * time.Second
	pollBatchMax = 20
)

// Command is a chat message split into its verb and arguments. A bot
// mention suffix ("/analyze@my_bot") is stripped from Name.
type Command struct {
	Name string
	Args []string
}

// Arg returns the i-th argument, or "" when absent.
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// ParseCommand splits text on whitespace. Empty text yields the zero Command.
func ParseCommand(text string) Command {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{}
	}
	name := fields[0]
	if strings.HasPrefix(name, "/") {
		if at := strings.IndexByte(name, '@'); at > 0 {
			name = name[:at]
		}
		name = strings.ToLower(name)
	}
	return Command{Name: name, Args: fields[1:]}
}

// CommandHandler is called for each command from the configured chat. The
// returned text, if any, is sent back to the chat.
type CommandHandler func(ctx context.Context, cmd Command) string

type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// StartPolling long-polls getUpdates and dispatches commands until ctx is
// cancelled. Messages from any chat other than ChatID are skipped.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	client := &http.Client{Timeout: pollTimeout + 5*time.Second, Transport: t.Client.Transport}
	offset := 0
	for {
		next, err := t.poll(ctx, client, offset, handler)
		if ctx.Err() != nil {
			log.Println("[INFO] Telegram polling stopped")
			return
		}
		if err != nil {
			log.Printf("[WARN] polling request failed: %v", err)
			select {
			case <-ctx.Done():
				log.Println("[INFO] Telegram polling stopped")
				return
			case <-time.After(pollBackoff):
			}
			continue
		}
		offset = next
	}
}

// poll fetches one batch of updates and returns the offset for the next one.
func (t *TelegramNotifier) poll(ctx context.Context, client *http.Client, offset int, handler CommandHandler) (int, error) {
	query := url.Values{
		"offset":          {strconv.Itoa(offset)},
		"timeout":         {strconv.Itoa(int(pollTimeout / time.Second))},
		"limit":           {strconv.Itoa(pollBatchMax)},
		"allowed_updates": {`["message"]`},
	}
	var updates []telegramUpdate
	if err := t.call(ctx, client, "getUpdates", query, nil, &updates); err != nil {
		return offset, err
	}
	for _, u := range updates {
		offset = u.UpdateID + 1
		if u.Message == nil {
			continue
		}
		if chat := strconv.FormatInt(u.Message.Chat.ID, 10); chat != t.ChatID {
			log.Printf("[WARN] ignoring update %d from chat %s", u.UpdateID, chat)
			continue
		}
		cmd := ParseCommand(u.Message.Text)
		if cmd.Name == "" {
			continue
		}
		log.Printf("[INFO] received command: %s", cmd)
		if reply := handler(ctx, cmd); reply != "" {
			if err := t.Send(ctx, reply); err != nil {
				log.Printf("[ERROR] send reply: %v", err)
			}
		}
	}
	return offset, nil
}
