// Package lightbox implements the single shared photo viewer of the page as an
// explicit two-state machine (Closed, Open) driven by input events.
//
// The controller owns the only session of the process: opening a gallery
// always replaces whatever was open before, and closing releases the image
// list. Keyboard input is ignored while closed.
package lightbox

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Element ids of the modal DOM contract.
const (
	RootID  = "lightbox"
	ImageID = "lightboxImage"
	CloseID = "lightboxClose"
	PrevID  = "lightboxPrev"
	NextID  = "lightboxNext"
	CountID = "lightboxCount"

	// OpenClass is the visibility class toggled on the modal root.
	OpenClass = "open"
)

// Keys bound while the lightbox is open.
const (
	KeyEscape     = "Escape"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

var (
	// ErrEmptySequence is returned when opening with no images.
	ErrEmptySequence = errors.New("lightbox: image list is empty")

	// ErrIndexOutOfRange is returned when the start index is outside the list.
	ErrIndexOutOfRange = errors.New("lightbox: start index out of range")
)

// State is the controller state.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Event is an input to the state machine.
type Event interface{ event() }

// OpenEvent is a card click carrying the gallery's full list and the index
// of the clicked card.
type OpenEvent struct {
	Images []string
	Start  int
}

// PrevEvent navigates to the previous image with wraparound.
type PrevEvent struct{}

// NextEvent navigates to the next image with wraparound.
type NextEvent struct{}

// CloseEvent closes the lightbox.
type CloseEvent struct{}

// KeyEvent is a key press, named like KeyboardEvent.key.
type KeyEvent struct{ Key string }

// ClickEvent is a click on the element with the given id. A click on the
// modal root itself is a backdrop click.
type ClickEvent struct{ Target string }

func (OpenEvent) event()  {}
func (PrevEvent) event()  {}
func (NextEvent) event()  {}
func (CloseEvent) event() {}
func (KeyEvent) event()   {}
func (ClickEvent) event() {}

// View is what the modal DOM should show after a transition.
type View struct {
	State     State  `json:"-"`
	Open      bool   `json:"open"`
	SessionID string `json:"sessionId,omitempty"`

	// AriaHidden is the value of the root's aria-hidden attribute.
	AriaHidden string `json:"ariaHidden"`

	// ImageSrc is the src of the image element; empty when closed.
	ImageSrc string `json:"imageSrc"`

	// Controls reports whether prev/next and the counter are displayed.
	Controls bool   `json:"controls"`
	Counter  string `json:"counter,omitempty"`

	Index int `json:"index"`
	Total int `json:"total"`
}

// Controller is the lightbox state machine. It is safe for concurrent use;
// transitions are serialized.
type Controller struct {
	mu     sync.Mutex
	state  State
	id     string
	images []string
	index  int
	logger *slog.Logger
}

// New returns a closed controller. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{logger: logger}
}

// Handle applies one event and returns the resulting view.
// Only OpenEvent can fail; a failed open leaves the state unchanged.
func (c *Controller) Handle(ev Event) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e := ev.(type) {
	case OpenEvent:
		if err := c.open(e.Images, e.Start); err != nil {
			return c.view(), err
		}
	case PrevEvent:
		c.step(-1)
	case NextEvent:
		c.step(1)
	case CloseEvent:
		c.close()
	case KeyEvent:
		if c.state != Open {
			break
		}
		switch e.Key {
		case KeyEscape:
			c.close()
		case KeyArrowLeft:
			c.step(-1)
		case KeyArrowRight:
			c.step(1)
		}
	case ClickEvent:
		switch e.Target {
		case CloseID, RootID:
			if c.state == Open {
				c.close()
			}
		case PrevID:
			c.step(-1)
		case NextID:
			c.step(1)
		}
	default:
		return c.view(), fmt.Errorf("lightbox: unsupported event %T", ev)
	}
	return c.view(), nil
}

// Open shows images starting at start, replacing any current session.
func (c *Controller) Open(images []string, start int) (View, error) {
	return c.Handle(OpenEvent{Images: images, Start: start})
}

// Prev navigates backwards.
func (c *Controller) Prev() View {
	v, _ := c.Handle(PrevEvent{})
	return v
}

// Next navigates forwards.
func (c *Controller) Next() View {
	v, _ := c.Handle(NextEvent{})
	return v
}

// Close closes the lightbox.
func (c *Controller) Close() View {
	v, _ := c.Handle(CloseEvent{})
	return v
}

// View returns the current view without changing state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

func (c *Controller) open(images []string, start int) error {
	if len(images) == 0 {
		return ErrEmptySequence
	}
	if start < 0 || start >= len(images) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, start, len(images))
	}
	c.state = Open
	c.id = uuid.NewString()
	c.images = append([]string(nil), images...)
	c.index = start
	c.logger.Debug("lightbox opened", "session", c.id, "index", start, "total", len(images))
	return nil
}

// step moves delta positions with wraparound; a no-op without a session.
func (c *Controller) step(delta int) {
	n := len(c.images)
	if n == 0 {
		return
	}
	c.index = ((c.index+delta)%n + n) % n
}

func (c *Controller) close() {
	if c.state == Open {
		c.logger.Debug("lightbox closed", "session", c.id)
	}
	c.state = Closed
	c.id = ""
	c.images = nil
	c.index = 0
}

func (c *Controller) view() View {
	if c.state != Open {
		return View{State: Closed, AriaHidden: "true"}
	}
	v := View{
		State:      Open,
		Open:       true,
		SessionID:  c.id,
		AriaHidden: "false",
		ImageSrc:   c.images[c.index],
		Index:      c.index,
		Total:      len(c.images),
	}
	if len(c.images) > 1 {
		v.Controls = true
		v.Counter = fmt.Sprintf("%d / %d", c.index+1, len(c.images))
	}
	return v
}
