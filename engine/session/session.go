// Package session is the review state machine. It owns the current image,
// the display settings and the tag-skip policy, and turns control-surface
// commands into tag store mutations, navigation and render plans.
// All methods are meant to be called from a single goroutine.
package session

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/1siamBot/modkit/engine/imageset"
	"github.com/1siamBot/modkit/engine/nav"
	"github.com/1siamBot/modkit/engine/render"
	"github.com/1siamBot/modkit/engine/tags"
	"github.com/sirupsen/logrus"
)

// ErrEmptySet is returned by New when there is nothing to review
var ErrEmptySet = errors.New("no images to review")

// ImageLoader decodes an image by relative path
type ImageLoader interface {
	Load(rel string) (image.Image, error)
}

// Options are the initial session settings
type Options struct {
	DisplayMode render.DisplayMode
	Channel     render.Channel
	SkipTagged  bool
	ViewWidth   int
	ViewHeight  int
}

// Session is one review run over an image set
type Session struct {
	set     *imageset.Set
	store   *tags.Store
	history tags.History
	planner *render.Planner
	loader  ImageLoader
	log     logrus.FieldLogger

	index      int
	display    render.DisplayMode
	channel    render.Channel
	skipTagged bool
	viewW      int
	viewH      int
	exhausted  bool
	quitting   bool

	dirty      bool
	plan       *render.Plan
	decoded    image.Image
	decodedIdx int
}

// New starts a session on the first image the skip policy allows. If none is
// allowed the session starts on index 0 showing the exhausted marker.
func New(set *imageset.Set, store *tags.Store, planner *render.Planner, loader ImageLoader, opts Options, log logrus.FieldLogger) (*Session, error) {
	if set == nil || set.Len() == 0 {
		return nil, ErrEmptySet
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if planner == nil {
		planner = render.NewPlanner()
	}

	s := &Session{
		set:        set,
		store:      store,
		planner:    planner,
		loader:     loader,
		log:        log,
		display:    opts.DisplayMode,
		channel:    opts.Channel,
		skipTagged: opts.SkipTagged,
		viewW:      opts.ViewWidth,
		viewH:      opts.ViewHeight,
		dirty:      true,
		decodedIdx: -1,
	}
	if r := nav.First(set.Paths, store, s.skipTagged); r.Exhausted {
		s.exhausted = true
	} else {
		s.index = r.Index
	}
	return s, nil
}

// Dispatch runs one command to completion
func (s *Session) Dispatch(cmd Command) error {
	switch cmd.Kind {
	case CmdNext:
		s.Navigate(nav.Next)
	case CmdPrev:
		s.Navigate(nav.Prev)
	case CmdToggleTag:
		s.ToggleTag(cmd.Tag)
	case CmdChannel:
		s.SetChannel(cmd.Channel)
	case CmdDisplayMode:
		s.ToggleDisplayMode()
	case CmdSkipPolicy:
		s.ToggleSkipPolicy()
	case CmdUndo:
		s.Undo()
	case CmdQuit:
		return s.Quit()
	default:
		return fmt.Errorf("unknown command %s", cmd.Kind)
	}
	return nil
}

// Navigate moves to the next valid image in dir. When none is left the index
// stays put and the session reports Exhausted.
func (s *Session) Navigate(dir nav.Direction) nav.Result {
	r := nav.Advance(dir, s.index, s.set.Paths, s.store, s.skipTagged)
	if r.Exhausted {
		s.exhausted = true
		s.log.WithField("direction", dir).Info("no more images")
		return r
	}
	s.exhausted = false
	s.index = r.Index
	s.dirty = true
	return r
}

// ToggleTag flips tag on the current image, persists the store and moves on
func (s *Session) ToggleTag(tag string) tags.Event {
	e := s.store.Toggle(s.Current(), tag)
	s.history.Push(e)
	s.log.WithFields(logrus.Fields{
		"image":  e.Image,
		"tag":    e.Tag,
		"action": e.Action,
	}).Info("tag toggled")
	s.save()
	s.Navigate(nav.Next)
	return e
}

// Undo reverts the most recent toggle. It reports false when there is none.
func (s *Session) Undo() bool {
	e, ok := s.history.Undo(s.store)
	if !ok {
		return false
	}
	s.log.WithFields(logrus.Fields{
		"image":  e.Image,
		"tag":    e.Tag,
		"action": e.Action,
	}).Info("tag toggle undone")
	s.save()
	return true
}

// SetChannel selects c, or goes back to the composite if c is already shown
func (s *Session) SetChannel(c render.Channel) {
	s.channel = s.channel.Toggle(c)
	s.dirty = true
}

// ToggleDisplayMode switches between single and grid view
func (s *Session) ToggleDisplayMode() {
	s.display = s.display.Flip()
	s.dirty = true
}

// ToggleSkipPolicy flips whether navigation skips tagged images. It only
// affects the next navigation.
func (s *Session) ToggleSkipPolicy() {
	s.skipTagged = !s.skipTagged
	s.log.WithField("skip_tagged", s.skipTagged).Info("skip policy changed")
}

// Resize sets the viewport
func (s *Session) Resize(w, h int) {
	if w == s.viewW && h == s.viewH {
		return
	}
	s.viewW, s.viewH = w, h
	s.dirty = true
}

// Quit saves the store and marks the session finished
func (s *Session) Quit() error {
	s.quitting = true
	if err := s.store.Save(); err != nil {
		return fmt.Errorf("save tags on quit: %w", err)
	}
	return nil
}

func (s *Session) save() {
	if err := s.store.Save(); err != nil {
		s.log.WithError(err).WithField("file", s.store.Path()).Error("saving tags failed")
	}
}

// Render returns the plan for the current state, recomputing it only when
// something that affects the picture changed. A nil plan with a nil error
// means the viewport is too small to draw into.
func (s *Session) Render() (*render.Plan, error) {
	if !s.dirty {
		return s.plan, nil
	}
	s.dirty = false
	s.plan = nil

	img, err := s.image()
	if err != nil {
		return nil, err
	}
	s.plan = s.planner.Plan(img, s.display, s.channel, s.viewW, s.viewH)
	return s.plan, nil
}

// image decodes the current image, reusing the last decode for the same index
func (s *Session) image() (image.Image, error) {
	if s.decodedIdx == s.index && s.decoded != nil {
		return s.decoded, nil
	}
	img, err := s.loader.Load(s.Current())
	if err != nil {
		s.decoded, s.decodedIdx = nil, -1
		return nil, err
	}
	s.decoded, s.decodedIdx = img, s.index
	return img, nil
}

// Dirty reports whether the next Render will produce a new plan
func (s *Session) Dirty() bool { return s.dirty }

// Index returns the current position in the image set
func (s *Session) Index() int { return s.index }

// Len returns the size of the image set
func (s *Session) Len() int { return s.set.Len() }

// Current returns the relative path of the current image
func (s *Session) Current() string { return s.set.At(s.index) }

// Tags returns the tags of the current image
func (s *Session) Tags() []string { return s.store.Tags(s.Current()) }

func (s *Session) Exhausted() bool                 { return s.exhausted }
func (s *Session) Quitting() bool                  { return s.quitting }
func (s *Session) DisplayMode() render.DisplayMode { return s.display }
func (s *Session) Channel() render.Channel         { return s.channel }
func (s *Session) SkipTagged() bool                { return s.skipTagged }
func (s *Session) UndoDepth() int                  { return s.history.Len() }

// Title is the window title: position, count and full path
func (s *Session) Title() string {
	return fmt.Sprintf("%d / %d - %s", s.index+1, s.set.Len(), s.set.Abs(s.Current()))
}
