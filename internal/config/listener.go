package config

type KeyListener struct {
	Key      string
	Listener func(any)
}

var listeners []KeyListener

// RegisterKeyListener use in init method don't dynamic update
func RegisterKeyListener(l KeyListener) {
	listeners = append(listeners, l)
}

// NotifyKeyListeners re-reads the watched keys and fires listeners
// whose values changed, used after an in-place config reload.
func NotifyKeyListeners() {
	for _, l := range listeners {
		if l.Listener != nil {
			l.Listener(vp.Get(l.Key))
		}
	}
}
