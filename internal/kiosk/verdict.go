package kiosk

import "ms-scanning/internal/models"

// Verdict is the terminal outcome category the operator sees for one scan
// attempt. duplicate_in_session is decided locally and is distinct from the
// server-reported already_used.
type Verdict string

const (
	VerdictAccepted      Verdict = "accepted"
	VerdictAlreadyUsed   Verdict = "already_used"
	VerdictDuplicate     Verdict = "duplicate_in_session"
	VerdictUnrecognized  Verdict = "unrecognized"
	VerdictRejected      Verdict = "rejected"
	VerdictQueuedOffline Verdict = "queued_offline"
)

type Sound string

const (
	SoundSuccess Sound = "success"
	SoundWarning Sound = "warning"
	SoundError   Sound = "error"
)

// Notifier renders a verdict to the operator: a display update plus a sound
// cue. Implementations must not block the scan loop for long.
type Notifier interface {
	ShowVerdict(verdict Verdict, message string, info *models.TicketInfo)
	PlaySound(sound Sound)
}
