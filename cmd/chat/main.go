// Command chat is a terminal front end for the chat relay. The terminal has no
// speech host, so voice commands report that the capability is missing.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/peterh/liner"

	"github.com/anubhav-ai/assistant/internal/config"
	"github.com/anubhav-ai/assistant/internal/format"
	"github.com/anubhav-ai/assistant/internal/model/chat"
	"github.com/anubhav-ai/assistant/internal/model/persona"
	chatsvc "github.com/anubhav-ai/assistant/internal/service/chat"
	"github.com/anubhav-ai/assistant/internal/service/proxy"
	"github.com/anubhav-ai/assistant/internal/service/speech"
	"github.com/anubhav-ai/assistant/internal/telemetry"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111"))
	taglineStyle   = lipgloss.NewStyle().Faint(true)
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("183"))
	metaStyle      = lipgloss.NewStyle().Faint(true)
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// Logs go to the file only so they do not interleave with the prompt.
	_, logFile, err := telemetry.InitLogger(cfg.Log.Dir, "chat.log", telemetry.ParseLevel(cfg.Log.Level), io.Discard)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logFile.Close()

	p, err := resolvePersona(cfg.Persona)
	if err != nil {
		fmt.Fprintln(os.Stderr, "persona:", err)
		os.Exit(1)
	}

	if err := run(cfg.Client, p); err != nil {
		slog.Error("chat exited", "error", err)
		os.Exit(1)
	}
}

func resolvePersona(cfg config.PersonaConfig) (persona.Persona, error) {
	personas := persona.Seed()
	if cfg.File != "" {
		loaded, err := persona.LoadFile(cfg.File, personas)
		if err != nil {
			return persona.Persona{}, err
		}
		personas = loaded
	}
	p, ok := persona.NewMemoryStore(personas).FindByID(cfg.ID)
	if !ok {
		return persona.Persona{}, fmt.Errorf("persona %q not found", cfg.ID)
	}
	return p, nil
}

func run(clientCfg config.ClientConfig, p persona.Persona) error {
	opts := []proxy.Option{proxy.WithPersona(p)}
	if clientCfg.Timeout > 0 {
		opts = append(opts, proxy.WithTimeout(clientCfg.Timeout))
	}
	client := proxy.NewClient(clientCfg.BaseURL, opts...)

	session := chatsvc.New(client, chatsvc.WithGreeting(p.Greeting))
	draft := &chatsvc.Draft{}
	notify := speech.NotifierFunc(func(msg string) {
		fmt.Println(noticeStyle.Render(msg))
	})
	speaker := speech.NewSpeaker(nil, speech.NewSelector(), slog.Default())
	listener := speech.NewListener(nil, notify, draft, session, speech.Replace, slog.Default())

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	history := historyPath()
	if f, err := os.Open(history); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer saveHistory(line, history)

	compact := p.Density == persona.DensityCompact
	theme := format.DefaultTheme()

	fmt.Println(titleStyle.Render(p.Name))
	if p.Tagline != "" {
		fmt.Println(taglineStyle.Render(p.Tagline))
	}
	fmt.Println(metaStyle.Render("Type /help for commands."))
	fmt.Println()

	printed := 0
	show := func() {
		messages := session.Snapshot().Messages
		for _, m := range messages[printed:] {
			if !m.IsUser() {
				printMessage(m, theme, compact)
			}
		}
		printed = len(messages)
	}
	show()

	for {
		input, err := line.Prompt(promptStyle.Render("you> "))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			switch strings.Fields(input)[0] {
			case "/quit", "/exit":
				return nil
			case "/help":
				fmt.Println(metaStyle.Render("/listen  dictate a message\n/speak   read the last reply aloud\n/quit    leave"))
			case "/listen":
				if err := listener.StartListening(); err != nil {
					slog.Debug("listen unavailable", "error", err)
				}
			case "/speak":
				last := lastReply(session.Snapshot())
				if err := speaker.Speak(last.ID, last.Text, 0); errors.Is(err, speech.ErrSynthesisUnavailable) {
					notify.Notify("Speech output not supported in this terminal")
				}
			default:
				notify.Notify("Unknown command " + input)
			}
			continue
		}

		draft.Set(input)
		fmt.Println(metaStyle.Render("…"))
		// Ctrl+C while waiting abandons the request; the session records the fallback reply.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		session.Send(ctx, draft.Take())
		stop()
		show()
	}
}

func printMessage(m chat.Message, theme format.Theme, compact bool) {
	body := format.Render(format.Format(m.Text), theme, compact)
	fmt.Printf("%s %s\n%s\n", assistantStyle.Render("assistant"), metaStyle.Render(format.Clock(m.Timestamp)), body)
	if !compact {
		fmt.Println()
	}
}

func lastReply(state chat.State) chat.Message {
	for i := len(state.Messages) - 1; i >= 0; i-- {
		if !state.Messages[i].IsUser() {
			return state.Messages[i]
		}
	}
	return chat.Message{}
}

func historyPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "anubhav-ai", "chat_history")
}

func saveHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = line.WriteHistory(f)
}
