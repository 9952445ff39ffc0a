package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/1siamBot/modkit/engine/render"
)

// ErrKeyConflict is returned when a tag key shadows another binding
var ErrKeyConflict = errors.New("key already bound")

// CommandKind is one entry of the review control surface
type CommandKind int

const (
	CmdNext CommandKind = iota
	CmdPrev
	CmdToggleTag
	CmdChannel
	CmdDisplayMode
	CmdSkipPolicy
	CmdUndo
	CmdQuit
)

func (k CommandKind) String() string {
	switch k {
	case CmdNext:
		return "next"
	case CmdPrev:
		return "prev"
	case CmdToggleTag:
		return "tag"
	case CmdChannel:
		return "channel"
	case CmdDisplayMode:
		return "display-mode"
	case CmdSkipPolicy:
		return "skip-policy"
	case CmdUndo:
		return "undo"
	case CmdQuit:
		return "quit"
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// Command is a user action. Tag is set for CmdToggleTag, Channel for CmdChannel.
type Command struct {
	Kind    CommandKind
	Tag     string
	Channel render.Channel
}

// Keymap binds key names ("right", "r", "1") to commands
type Keymap map[string]Command

// DefaultTagKeys is the stock tag vocabulary
var DefaultTagKeys = map[string]string{
	"1": "copy",
	"2": "skip",
}

func builtinKeys() Keymap {
	return Keymap{
		"right": {Kind: CmdNext},
		"left":  {Kind: CmdPrev},
		"r":     {Kind: CmdChannel, Channel: render.Red},
		"g":     {Kind: CmdChannel, Channel: render.Green},
		"b":     {Kind: CmdChannel, Channel: render.Blue},
		"a":     {Kind: CmdChannel, Channel: render.Alpha},
		"m":     {Kind: CmdDisplayMode},
		"s":     {Kind: CmdSkipPolicy},
		"z":     {Kind: CmdUndo},
		"q":     {Kind: CmdQuit},
	}
}

// NewKeymap returns the built-in bindings plus one toggle per tag key
func NewKeymap(tagKeys map[string]string) (Keymap, error) {
	km := builtinKeys()
	for key, tag := range tagKeys {
		name := normalizeKey(key)
		tag = strings.TrimSpace(tag)
		if name == "" || tag == "" {
			return nil, fmt.Errorf("empty tag binding %q=%q", key, tag)
		}
		if existing, ok := km[name]; ok {
			return nil, fmt.Errorf("%w: %q is %s", ErrKeyConflict, name, existing.Kind)
		}
		km[name] = Command{Kind: CmdToggleTag, Tag: tag}
	}
	return km, nil
}

// Lookup finds the command bound to a key name
func (k Keymap) Lookup(name string) (Command, bool) {
	cmd, ok := k[normalizeKey(name)]
	return cmd, ok
}

// Keys returns the bound key names, sorted
func (k Keymap) Keys() []string {
	keys := make([]string, 0, len(k))
	for name := range k {
		keys = append(keys, name)
	}
	slices.Sort(keys)
	return keys
}

// TagKeys returns "key=tag" pairs for the help line, sorted by key
func (k Keymap) TagKeys() []string {
	var out []string
	for _, name := range k.Keys() {
		if cmd := k[name]; cmd.Kind == CmdToggleTag {
			out = append(out, name+"="+cmd.Tag)
		}
	}
	return out
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
