package kiosk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"ms-scanning/internal/logger"
)

// Decoder is the camera capability the session depends on. It delivers
// decoded QR payloads through the registered callback; the session never
// manages camera internals.
type Decoder interface {
	Start(onDecoded func(text string), onError func(err error)) error
	Stop() error
}

type State string

const (
	StateIdle        State = "idle"
	StateScanning    State = "scanning"
	StateProcessing  State = "processing"
	StateResultShown State = "result_shown"
)

// Stats are the session-local counters shown next to the scanner.
type Stats struct {
	TotalScanned   int
	ValidTickets   int
	InvalidTickets int
}

// Session owns the decode -> verify pipeline for one operator. One claim is
// processed at a time; the mutex also serializes offline-queue draining with
// live scans so a replayed claim and a fresh one never interleave.
type Session struct {
	ID string

	verifier TicketVerifier
	queue    *Queue
	notifier Notifier
	decoder  Decoder
	online   func() bool
	log      *logger.Logger

	mu    sync.Mutex
	state State
	seen  map[string]struct{}
	stats Stats
}

func NewSession(verifier TicketVerifier, queue *Queue, notifier Notifier, decoder Decoder, online func() bool, log *logger.Logger) *Session {
	return &Session{
		ID:       uuid.NewString(),
		verifier: verifier,
		queue:    queue,
		notifier: notifier,
		decoder:  decoder,
		online:   online,
		log:      log,
		state:    StateIdle,
		seen:     make(map[string]struct{}),
	}
}

// Start begins the decode loop. Failure to acquire the camera is the one
// unrecoverable condition: it is reported through onError and the session
// stays idle until the operator retries.
func (s *Session) Start(onError func(err error)) error {
	err := s.decoder.Start(s.HandleDecoded, onError)
	if err != nil {
		return fmt.Errorf("failed to start decoder: %w", err)
	}
	s.mu.Lock()
	s.state = StateScanning
	s.mu.Unlock()
	return nil
}

// Stop halts scanning on explicit operator action.
func (s *Session) Stop() error {
	err := s.decoder.Stop()
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
	return err
}

// Continue resumes scanning after a verdict was shown.
func (s *Session) Continue(onError func(err error)) error {
	return s.Start(onError)
}

// HandleDecoded processes one decoded QR payload. A decode event arriving
// while another claim is in flight is discarded.
func (s *Session) HandleDecoded(text string) {
	if !s.mu.TryLock() {
		return
	}
	defer s.mu.Unlock()

	s.state = StateProcessing
	// Pause the decode loop until the operator continues.
	_ = s.decoder.Stop()
	defer func() { s.state = StateResultShown }()

	claims, err := ParseClaim(text)
	if err != nil {
		// Structural failure: no counter or fingerprint mutation, the
		// operator may correct and re-scan.
		s.notifier.ShowVerdict(VerdictUnrecognized, "QR code non reconnu", nil)
		s.notifier.PlaySound(SoundError)
		return
	}

	fingerprint := Fingerprint(claims)
	if _, dup := s.seen[fingerprint]; dup {
		// Local fast path: rejected without a network round trip.
		s.stats.TotalScanned++
		s.stats.InvalidTickets++
		s.notifier.ShowVerdict(VerdictDuplicate, "Ce billet a déjà été scanné", nil)
		s.notifier.PlaySound(SoundError)
		return
	}

	if !s.online() {
		s.enqueueOffline(text)
		return
	}

	result, err := s.verifier.Verify(context.Background(), text)
	if err != nil {
		// Transport-level failure while nominally online.
		s.enqueueOffline(text)
		return
	}

	s.applyResult(fingerprint, result)
}

// enqueueOffline buffers the claim for the reconnect drain. Neither a
// success nor a failure: counters stay untouched.
func (s *Session) enqueueOffline(token string) {
	if err := s.queue.Enqueue(token); err != nil {
		s.notifier.ShowVerdict(VerdictRejected, "Impossible de sauvegarder le scan", nil)
		s.notifier.PlaySound(SoundError)
		return
	}
	if s.log != nil {
		s.log.LogQueue("enqueue", s.queue.Len(), "claim saved for later verification")
	}
	s.notifier.ShowVerdict(VerdictQueuedOffline, "Scan sauvegardé hors ligne", nil)
	s.notifier.PlaySound(SoundWarning)
}

// applyResult maps a server verdict onto counters, the fingerprint set and
// the operator display. Caller holds the mutex.
func (s *Session) applyResult(fingerprint string, result *VerifyResult) {
	switch {
	case result.Accepted:
		s.seen[fingerprint] = struct{}{}
		s.stats.TotalScanned++
		s.stats.ValidTickets++
		s.notifier.ShowVerdict(VerdictAccepted, result.Message, result.Info)
		s.notifier.PlaySound(SoundSuccess)
	case result.AlreadyUsed:
		// Already used still counts as seen this session.
		s.seen[fingerprint] = struct{}{}
		s.stats.TotalScanned++
		s.stats.InvalidTickets++
		s.notifier.ShowVerdict(VerdictAlreadyUsed, result.Message, result.Info)
		s.notifier.PlaySound(SoundWarning)
	default:
		// Structural rejection: not fingerprinted, a corrected re-scan
		// stays possible.
		s.stats.TotalScanned++
		s.stats.InvalidTickets++
		s.notifier.ShowVerdict(VerdictRejected, result.Message, result.Info)
		s.notifier.PlaySound(SoundError)
	}
}

// DrainOffline replays buffered claims against the verifier. It takes the
// same gate as live scans, so a replayed claim and a fresh one cannot both
// reach the server concurrently from this kiosk.
func (s *Session) DrainOffline(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queue.Len() == 0 {
		return nil
	}
	if s.log != nil {
		s.log.LogQueue("drain", s.queue.Len(), "replaying offline scans")
	}

	return s.queue.Drain(func(scan PendingScan) error {
		result, err := s.verifier.Verify(ctx, scan.Token)
		if err != nil {
			return err
		}
		fingerprint := ""
		if claims, perr := ParseClaim(scan.Token); perr == nil {
			fingerprint = Fingerprint(claims)
		}
		s.applyResult(fingerprint, result)
		return nil
	})
}

// WatchReconnect polls the reachability probe and drains the offline queue
// on each unreachable -> reachable transition. Runs until ctx is done.
func (s *Session) WatchReconnect(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	wasOnline := s.online()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			isOnline := s.online()
			if isOnline && !wasOnline {
				if err := s.DrainOffline(ctx); err != nil && s.log != nil {
					s.log.Error("QUEUE", fmt.Sprintf("offline drain failed: %v", err))
				}
			}
			wasOnline = isOnline
		}
	}
}

// Stats returns a copy of the session counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset clears counters and the fingerprint set on explicit operator action.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = Stats{}
	s.seen = make(map[string]struct{})
}
