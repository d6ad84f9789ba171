// Package wizard implements the new-race dialogue: a linear state machine
// that asks one question per chat message and submits one race at the end.
package wizard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashakosti/Go_Race_Bot/internal/service"
	"github.com/sashakosti/Go_Race_Bot/internal/storage"
)

// Source is what the wizard needs from the backend.
type Source interface {
	GetPlayers(ctx context.Context) ([]string, error)
	GetTracks(ctx context.Context) ([]string, error)
	SubmitRace(ctx context.Context, race storage.Race) error
}

// State is where the dialogue is; transitions only move forward.
type State string

const (
	StateInit               State = "init"
	StateDateEntry          State = "date_entry"
	StateTrackSelection     State = "track_selection"
	StatePositionCollection State = "position_collection"
	StateDone               State = "done"
)

// DateMode selects how the race date is obtained.
type DateMode int

const (
	// DateAuto uses today's date in Options.Location.
	DateAuto DateMode = iota
	// DatePrompt asks the user and stores the reply as is.
	DatePrompt
)

const dateLayout = "2006-01-02"

type Options struct {
	DateMode DateMode
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

// Reply is one outgoing chat message.
type Reply struct {
	Text string
	// Keyboard, if set, is offered as a one-time reply keyboard, one button per row.
	Keyboard []string
	Markdown bool
}

// Wizard holds the progress of one race entry.
// It is not safe for concurrent use; the dispatcher feeds one message at a time.
type Wizard struct {
	src  Source
	opts Options

	state   State
	players []string
	tracks  []string
	race    storage.Race
	next    int
}

func New(src Source, opts Options) *Wizard {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Wizard{src: src, opts: opts, state: StateInit}
}

func (w *Wizard) State() State { return w.state }

func (w *Wizard) Done() bool { return w.state == StateDone }

// Race returns a copy of the record collected so far.
func (w *Wizard) Race() storage.Race {
	r := w.race
	r.Players = append([]string(nil), w.race.Players...)
	r.Positions = append([]storage.Position(nil), w.race.Positions...)
	return r
}

// Start runs the Init step.
func (w *Wizard) Start(ctx context.Context) Reply {
	return w.Handle(ctx, "")
}

// Handle is the transition function: it consumes one user message in the
// current state and returns the message to send back.
func (w *Wizard) Handle(ctx context.Context, text string) Reply {
	text = strings.TrimSpace(text)

	switch w.state {
	case StateInit:
		return w.init(ctx)

	case StateDateEntry:
		w.race.Date = text
		w.state = StateTrackSelection
		return w.trackPrompt()

	case StateTrackSelection:
		w.race.Track = text
		w.race.Positions = make([]storage.Position, 0, len(w.players))
		w.next = 0
		w.state = StatePositionCollection
		return w.positionPrompt()

	case StatePositionCollection:
		w.race.Positions = append(w.race.Positions, storage.ParsePosition(text))
		w.next++
		if w.complete() {
			return w.submit(ctx)
		}
		return w.positionPrompt()
	}

	return Reply{}
}

// init fetches the reference lists. On failure the wizard stays in Init and
// the next message runs it again.
func (w *Wizard) init(ctx context.Context) Reply {
	players, err := w.src.GetPlayers(ctx)
	if err != nil {
		return Reply{Text: "Error fetching setup data:\n" + err.Error()}
	}
	tracks, err := w.src.GetTracks(ctx)
	if err != nil {
		return Reply{Text: "Error fetching setup data:\n" + err.Error()}
	}
	// Zero players would count as all positions collected and submit an empty race.
	if len(players) == 0 {
		return Reply{Text: "No players found. Add players first, then send any message to try again."}
	}

	w.players = players
	w.tracks = tracks
	w.race = storage.Race{Players: append([]string(nil), players...)}

	if w.opts.DateMode == DatePrompt {
		w.state = StateDateEntry
		return Reply{Text: "🗓 Enter race date (YYYY-MM-DD):"}
	}

	w.race.Date = w.opts.Now().In(w.opts.Location).Format(dateLayout)
	w.state = StateTrackSelection
	return w.trackPrompt()
}

func (w *Wizard) trackPrompt() Reply {
	return Reply{
		Text:     "🏁 Choose track:",
		Keyboard: append([]string(nil), w.tracks...),
	}
}

func (w *Wizard) positionPrompt() Reply {
	return Reply{
		Text:     fmt.Sprintf("Enter position for *%s*:", service.EscapeMarkdown(w.players[w.next])),
		Markdown: true,
	}
}

func (w *Wizard) complete() bool {
	return w.next >= len(w.players)
}

// submit writes the race once. Whatever the outcome, the wizard is done.
func (w *Wizard) submit(ctx context.Context) Reply {
	w.state = StateDone

	if err := w.src.SubmitRace(ctx, w.Race()); err != nil {
		return Reply{Text: "❌ Error saving race:\n" + err.Error()}
	}
	return Reply{Text: fmt.Sprintf("✅ New race saved! %s, %s", w.race.Date, w.race.Track)}
}
