package games

// Keyset maps key names to control bytes. It is implemented by FlatKeyset
// and RoleSplitKeyset only.
type Keyset interface {
	// Resolve returns the control byte for key, or false if key has no
	// meaning in this keyset.
	Resolve(key string) (byte, bool)
	// Keys lists the recognized keys.
	Keys() []string
	// Controls lists every control byte the keyset can produce.
	Controls() []byte

	keyset()
}

// FlatKeyset is used by single-player style games where every recognized key
// maps directly to a control byte.
type FlatKeyset struct {
	Bindings []Binding
}

// Binding binds a key to a control byte.
type Binding struct {
	Key     string
	Control byte
}

func (FlatKeyset) keyset() {}

func (k FlatKeyset) Resolve(key string) (byte, bool) {
	for _, b := range k.Bindings {
		if b.Key == key {
			return b.Control, true
		}
	}
	return 0, false
}

func (k FlatKeyset) Keys() []string {
	keys := make([]string, 0, len(k.Bindings))
	for _, b := range k.Bindings {
		keys = append(keys, b.Key)
	}
	return keys
}

func (k FlatKeyset) Controls() []byte {
	var controls []byte
	for _, b := range k.Bindings {
		controls = appendUnique(controls, b.Control)
	}
	return controls
}

// Role is one player zone of a two-zone game. Each role has exactly two keys.
type Role struct {
	Name         string
	LeftKey      string
	RightKey     string
	LeftControl  byte
	RightControl byte
}

func (r Role) resolve(key string) (byte, bool) {
	switch key {
	case r.LeftKey:
		return r.LeftControl, true
	case r.RightKey:
		return r.RightControl, true
	}
	return 0, false
}

// RoleSplitKeyset is used by two-zone games like Pong. A key belongs to at
// most one role; the top role is checked first.
type RoleSplitKeyset struct {
	Top    Role
	Bottom Role
}

func (RoleSplitKeyset) keyset() {}

func (k RoleSplitKeyset) Resolve(key string) (byte, bool) {
	if c, ok := k.Top.resolve(key); ok {
		return c, true
	}
	return k.Bottom.resolve(key)
}

func (k RoleSplitKeyset) Keys() []string {
	return []string{k.Top.LeftKey, k.Top.RightKey, k.Bottom.LeftKey, k.Bottom.RightKey}
}

func (k RoleSplitKeyset) Controls() []byte {
	return []byte{k.Top.LeftControl, k.Top.RightControl, k.Bottom.LeftControl, k.Bottom.RightControl}
}

func appendUnique(s []byte, b byte) []byte {
	for _, v := range s {
		if v == b {
			return s
		}
	}
	return append(s, b)
}
