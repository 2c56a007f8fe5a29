// mockchat is a development stand-in for the game's local HTTP API.
// It serves /gamechat with the same shape and cursor semantics, and
// releases a scripted conversation over time so the reader pipeline
// can be exercised without the game running.
//
// Script lines are "mode|sender|message", one per line, # comments and
// blank lines ignored. Without a script a built-in conversation plays.
// POST /say?sender=X&mode=Équipe with the message as the body appends
// a line at runtime.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lecamarade/wtvoice/internal/log"
)

type entry struct {
	ID     int64  `json:"id"`
	Msg    string `json:"msg"`
	Sender string `json:"sender"`
	Enemy  bool   `json:"enemy"`
	Mode   string `json:"mode"`
	Time   int64  `json:"time"`
}

// feed holds the released portion of the conversation.
type feed struct {
	mu      sync.Mutex
	entries []entry
	nextID  int64
}

func (f *feed) append(mode, sender, msg string) entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e := entry{
		ID:     f.nextID,
		Msg:    msg,
		Sender: sender,
		Mode:   mode,
		Time:   time.Now().Unix(),
	}
	f.entries = append(f.entries, e)
	return e
}

func (f *feed) since(lastID int64) []entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entry{}
	for _, e := range f.entries {
		if e.ID > lastID {
			out = append(out, e)
		}
	}
	return out
}

type scriptLine struct {
	mode, sender, msg string
}

var builtinScript = []scriptLine{
	{"Équipe", "Bravo_Six", "attacking D4"},
	{"Équipe", "Chat_Noir", "couvre-moi je capture"},
	{"Tous", "WT_Veteran", "nice shot"},
	{"Équipe", "Bravo_Six", "bombers above C2 <color=#FF9696>[C2, alt. 3500 m]</color>"},
	{"Escadron", "Squad_Lead", "regroup at base"},
	{"Tous", "WT_Veteran", "gg"},
}

func loadScript(path string) ([]scriptLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []scriptLine
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("bad script line %q (want mode|sender|message)", line)
		}
		lines = append(lines, scriptLine{parts[0], parts[1], parts[2]})
	}
	return lines, scanner.Err()
}

func main() {
	addr := flag.String("addr", ":8111", "listen address")
	scriptPath := flag.String("script", "", "conversation script file (mode|sender|message per line)")
	interval := flag.Duration("interval", 3*time.Second, "delay between released messages")
	loop := flag.Bool("loop", false, "restart the script when it runs out")
	flag.Parse()
	log.Init("info")

	script := builtinScript
	if *scriptPath != "" {
		loaded, err := loadScript(*scriptPath)
		if err != nil {
			log.Error("load script", "error", err)
			os.Exit(1)
		}
		script = loaded
	}

	f := &feed{}

	go func() {
		for {
			for _, line := range script {
				time.Sleep(*interval)
				e := f.append(line.mode, line.sender, line.msg)
				log.Info("released", "id", e.ID, "mode", e.Mode, "sender", e.Sender)
			}
			if !*loop {
				log.Info("script finished")
				return
			}
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:               "mockchat",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("mockchat")
	})
	app.Get("/gamechat", func(c *fiber.Ctx) error {
		lastID := int64(c.QueryInt("lastId", 0))
		return c.JSON(f.since(lastID))
	})
	app.Post("/say", func(c *fiber.Ctx) error {
		sender := c.Query("sender", "Manual")
		mode := c.Query("mode", "Équipe")
		msg := strings.TrimSpace(string(c.Body()))
		if msg == "" {
			return fiber.NewError(fiber.StatusBadRequest, "empty message")
		}
		return c.JSON(f.append(mode, sender, msg))
	})

	log.Info("mockchat listening", "addr", *addr, "lines", len(script))
	if err := app.Listen(*addr); err != nil {
		log.Error("server", "error", err)
		os.Exit(1)
	}
}
