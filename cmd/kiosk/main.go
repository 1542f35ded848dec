package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"ms-scanning/internal/config"
	"ms-scanning/internal/kiosk"
	"ms-scanning/internal/kiosk/store"
	"ms-scanning/internal/logger"
	"ms-scanning/internal/models"
)

// consoleDecoder stands in for a camera decoder: the command loop feeds it
// scanned text (a USB scanner in keyboard-wedge mode types into stdin) and
// it delivers each payload to the registered callback. Stop pauses
// delivery, matching a camera decode loop being paused mid-verification.
type consoleDecoder struct {
	mu        sync.Mutex
	paused    bool
	onDecoded func(string)
}

func (d *consoleDecoder) Start(onDecoded func(string), onError func(error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onDecoded = onDecoded
	d.paused = false
	return nil
}

func (d *consoleDecoder) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = true
	return nil
}

// Deliver hands one decoded payload to the session unless scanning is
// paused, in which case the event is dropped like a camera frame would be.
func (d *consoleDecoder) Deliver(text string) {
	d.mu.Lock()
	callback := d.onDecoded
	paused := d.paused
	d.mu.Unlock()
	if paused || callback == nil {
		fmt.Println("Scanner paused, ignoring input")
		return
	}
	callback(text)
}

// terminalNotifier renders verdicts on the operator terminal with a color
// per outcome and the terminal bell as the sound cue.
type terminalNotifier struct{}

func (terminalNotifier) ShowVerdict(verdict kiosk.Verdict, message string, info *models.TicketInfo) {
	var c *color.Color
	switch verdict {
	case kiosk.VerdictAccepted:
		c = color.New(color.FgGreen, color.Bold)
	case kiosk.VerdictAlreadyUsed, kiosk.VerdictQueuedOffline:
		c = color.New(color.FgYellow, color.Bold)
	default:
		c = color.New(color.FgRed, color.Bold)
	}
	c.Printf("[%s] %s\n", verdict, message)

	if info != nil {
		fmt.Printf("  Réservation: #%d\n", info.ReservationID)
		fmt.Printf("  Spectacle:   %s\n", info.SpectacleTitle)
		fmt.Printf("  Date:        %s %s\n", info.DateSpectacle.Format("02/01/2006"), info.HeureSpectacle)
		fmt.Printf("  Lieu:        %s\n", info.Lieu)
		fmt.Printf("  Titulaire:   %s %s\n", info.Prenom, info.Nom)
		fmt.Printf("  Places:      %d\n", info.NbPlaces)
		if info.UsedAt != nil {
			fmt.Printf("  Scanné le:   %s\n", info.UsedAt.Format("02/01/2006 15:04:05"))
		}
	}
}

func (terminalNotifier) PlaySound(sound kiosk.Sound) {
	// One bell for success, two for anything that needs a second look.
	if sound == kiosk.SoundSuccess {
		fmt.Print("\a")
	} else {
		fmt.Print("\a\a")
	}
}

func buildStore(cfg *config.Config, log *logger.Logger) kiosk.Store {
	if cfg.Kiosk.QueueRedisKey != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatal("REDIS", fmt.Sprintf("Redis connection error: %v", err))
		}
		log.Info("QUEUE", fmt.Sprintf("Offline queue persisted to Redis key %s", cfg.Kiosk.QueueRedisKey))
		return store.NewRedisStore(client, cfg.Kiosk.QueueRedisKey)
	}
	log.Info("QUEUE", fmt.Sprintf("Offline queue persisted to %s", cfg.Kiosk.QueueFile))
	return store.NewFileStore(cfg.Kiosk.QueueFile)
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	client := kiosk.NewClient(cfg.Kiosk.ServerURL)
	queue := kiosk.NewQueue(buildStore(cfg, log))
	decoder := &consoleDecoder{paused: true}

	online := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return client.Healthy(ctx)
	}

	session := kiosk.NewSession(client, queue, terminalNotifier{}, decoder, online, log)
	log.Info("KIOSK", fmt.Sprintf("Scan session %s started against %s", session.ID, cfg.Kiosk.ServerURL))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go session.WatchReconnect(ctx, 10*time.Second)

	// Replay anything left over from a previous run if the service is up.
	if queue.Len() > 0 && online() {
		if err := session.DrainOffline(ctx); err != nil {
			log.Error("QUEUE", fmt.Sprintf("startup drain failed: %v", err))
		}
	}

	onCameraError := func(err error) {
		log.Error("KIOSK", fmt.Sprintf("decoder halted: %v", err))
	}
	if err := session.Start(onCameraError); err != nil {
		log.Fatal("KIOSK", fmt.Sprintf("failed to start scanning: %v", err))
	}

	fmt.Println("Scan a ticket (paste token), or type: stats | reset | quit")

	commands := bufio.NewScanner(os.Stdin)
	for commands.Scan() {
		line := strings.TrimSpace(commands.Text())
		switch line {
		case "":
			continue
		case "quit":
			_ = session.Stop()
			return
		case "reset":
			session.Reset()
			fmt.Println("Session counters cleared")
		case "stats":
			local := session.Stats()
			fmt.Printf("Session: total=%d valid=%d invalid=%d queued=%d\n",
				local.TotalScanned, local.ValidTickets, local.InvalidTickets, queue.Len())
			statsCtx, cancelStats := context.WithTimeout(ctx, 5*time.Second)
			if remote, err := client.FetchStats(statsCtx); err == nil {
				fmt.Printf("Server today: scanned=%d used=%d unused=%d\n",
					remote.Today.TotalScannedToday, remote.Today.UsedToday, remote.Today.UnusedToday)
			} else {
				fmt.Printf("Server stats unavailable: %v\n", err)
			}
			cancelStats()
		default:
			decoder.Deliver(line)
			// Verdict shown, resume scanning for the next ticket.
			_ = session.Continue(onCameraError)
		}
	}
}
