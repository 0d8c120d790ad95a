// Package drivers selects a transport.Dialer by name.
package drivers

import (
	"fmt"
	"sort"

	"github.com/omochice/chat-bridge/internal/transport"
	"github.com/omochice/chat-bridge/internal/transport/gobwas"
	"github.com/omochice/chat-bridge/internal/transport/gorilla"
	"github.com/omochice/chat-bridge/internal/transport/ws"
)

// Driver names accepted by New.
const (
	Nhooyr  = "nhooyr"
	Gorilla = "gorilla"
	Gobwas  = "gobwas"
)

// Options tune the created dialer.
type Options struct {
	ReadLimit int64
}

var registry = map[string]func(Options) transport.Dialer{
	Nhooyr:  func(o Options) transport.Dialer { return ws.Dialer{ReadLimit: o.ReadLimit} },
	Gorilla: func(o Options) transport.Dialer { return gorilla.Dialer{ReadLimit: o.ReadLimit} },
	Gobwas:  func(Options) transport.Dialer { return gobwas.Dialer{} },
}

// New returns the dialer registered under name. An empty name selects Nhooyr.
func New(name string, opts Options) (transport.Dialer, error) {
	if name == "" {
		name = Nhooyr
	}
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown transport %q (want one of %v)", name, Names())
	}
	return factory(opts), nil
}

// Names lists the registered drivers.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
