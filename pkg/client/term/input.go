package term

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/QYUbit/Tickline/pkg/client"
)

// DefaultHoldWindow is how long a key counts as held after its last event.
// Terminals report no key releases, only auto-repeat.
const DefaultHoldWindow = 150 * time.Millisecond

// Input collects tcell key events. HandleEvent may be called from the event
// goroutine while the frame loop queries it.
type Input struct {
	mu sync.Mutex

	hold    time.Duration
	now     func() time.Time
	lastKey map[client.Key]time.Time
	pressed map[client.Key]bool
	chars   []rune
	out     []rune
}

type InputOption func(*Input)

func WithHoldWindow(d time.Duration) InputOption {
	return func(in *Input) { in.hold = d }
}

func WithClock(now func() time.Time) InputOption {
	return func(in *Input) { in.now = now }
}

func NewInput(opts ...InputOption) *Input {
	in := &Input{
		hold:    DefaultHoldWindow,
		now:     time.Now,
		lastKey: make(map[client.Key]time.Time),
		pressed: make(map[client.Key]bool),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// HandleEvent records key events and ignores everything else.
func (in *Input) HandleEvent(ev tcell.Event) {
	kev, ok := ev.(*tcell.EventKey)
	if !ok {
		return
	}

	in.mu.Lock()
	defer in.mu.Unlock()

	if kev.Key() == tcell.KeyRune {
		in.chars = append(in.chars, kev.Rune())
	}

	k, ok := mapKey(kev)
	if !ok {
		return
	}
	if !in.downLocked(k) {
		in.pressed[k] = true
	}
	in.lastKey[k] = in.now()
}

func (in *Input) IsKeyDown(k client.Key) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.downLocked(k)
}

func (in *Input) downLocked(k client.Key) bool {
	last, ok := in.lastKey[k]
	return ok && in.now().Sub(last) < in.hold
}

func (in *Input) IsKeyPressed(k client.Key) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.pressed[k]
}

// CharsPressed returns the runes typed since the last EndFrame.
func (in *Input) CharsPressed() []rune {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.out = append(in.out[:0], in.chars...)
	return in.out
}

func (in *Input) EndFrame() {
	in.mu.Lock()
	defer in.mu.Unlock()
	clear(in.pressed)
	in.chars = in.chars[:0]
}

func mapKey(ev *tcell.EventKey) (client.Key, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return client.KeyUp, true
	case tcell.KeyDown:
		return client.KeyDown, true
	case tcell.KeyLeft:
		return client.KeyLeft, true
	case tcell.KeyRight:
		return client.KeyRight, true
	case tcell.KeyEnter:
		return client.KeyEnter, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return client.KeyBackspace, true
	case tcell.KeyEscape:
		return client.KeyEscape, true
	case tcell.KeyRune:
	default:
		return 0, false
	}

	switch ev.Rune() {
	case ' ':
		return client.KeySpace, true
	case 'w', 'W':
		return client.KeyW, true
	case 'a', 'A':
		return client.KeyA, true
	case 's', 'S':
		return client.KeyS, true
	case 'd', 'D':
		return client.KeyD, true
	}
	return 0, false
}

// PollEvents feeds screen events into in until the screen is finalized.
func PollEvents(screen tcell.Screen, in *Input) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		if _, ok := ev.(*tcell.EventResize); ok {
			screen.Sync()
			continue
		}
		in.HandleEvent(ev)
	}
}
