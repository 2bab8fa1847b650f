package keysynth

import "github.com/bendahl/uinput"

// keyCodes is the fixed vocabulary of ~120 symbol names __KEY_ chords are
// built from, mapped onto Linux input-subsystem key codes via the
// bendahl/uinput constant set.
var keyCodes = map[string]int{
	"a": uinput.KeyA, "b": uinput.KeyB, "c": uinput.KeyC, "d": uinput.KeyD,
	"e": uinput.KeyE, "f": uinput.KeyF, "g": uinput.KeyG, "h": uinput.KeyH,
	"i": uinput.KeyI, "j": uinput.KeyJ, "k": uinput.KeyK, "l": uinput.KeyL,
	"m": uinput.KeyM, "n": uinput.KeyN, "o": uinput.KeyO, "p": uinput.KeyP,
	"q": uinput.KeyQ, "r": uinput.KeyR, "s": uinput.KeyS, "t": uinput.KeyT,
	"u": uinput.KeyU, "v": uinput.KeyV, "w": uinput.KeyW, "x": uinput.KeyX,
	"y": uinput.KeyY, "z": uinput.KeyZ,

	"0": uinput.Key0, "1": uinput.Key1, "2": uinput.Key2, "3": uinput.Key3,
	"4": uinput.Key4, "5": uinput.Key5, "6": uinput.Key6, "7": uinput.Key7,
	"8": uinput.Key8, "9": uinput.Key9,

	"f1": uinput.KeyF1, "f2": uinput.KeyF2, "f3": uinput.KeyF3, "f4": uinput.KeyF4,
	"f5": uinput.KeyF5, "f6": uinput.KeyF6, "f7": uinput.KeyF7, "f8": uinput.KeyF8,
	"f9": uinput.KeyF9, "f10": uinput.KeyF10, "f11": uinput.KeyF11, "f12": uinput.KeyF12,

	"up": uinput.KeyUp, "down": uinput.KeyDown, "left": uinput.KeyLeft, "right": uinput.KeyRight,

	"ctrl":      uinput.KeyLeftctrl,
	"lctrl":     uinput.KeyLeftctrl,
	"rctrl":     uinput.KeyRightctrl,
	"shift":     uinput.KeyLeftshift,
	"lshift":    uinput.KeyLeftshift,
	"rshift":    uinput.KeyRightshift,
	"alt":       uinput.KeyLeftalt,
	"lalt":      uinput.KeyLeftalt,
	"ralt":      uinput.KeyRightalt,
	"super":     uinput.KeyLeftmeta,
	"lsuper":    uinput.KeyLeftmeta,
	"rsuper":    uinput.KeyRightmeta,
	"meta":      uinput.KeyLeftmeta,
	"win":       uinput.KeyLeftmeta,

	"space":     uinput.KeySpace,
	"enter":     uinput.KeyEnter,
	"return":    uinput.KeyEnter,
	"tab":       uinput.KeyTab,
	"backspace": uinput.KeyBackspace,
	"esc":       uinput.KeyEsc,
	"escape":    uinput.KeyEsc,
	"delete":    uinput.KeyDelete,
	"del":       uinput.KeyDelete,
	"home":      uinput.KeyHome,
	"end":       uinput.KeyEnd,
	"pageup":    uinput.KeyPageup,
	"pagedown":  uinput.KeyPagedown,
	"capslock":  uinput.KeyCapslock,
	"numlock":   uinput.KeyNumlock,
	"scrolllock": uinput.KeyScrolllock,
	"insert":    uinput.KeyInsert,
	"printscreen": uinput.KeySysrq,

	"minus":       uinput.KeyMinus,
	"equal":       uinput.KeyEqual,
	"leftbrace":   uinput.KeyLeftbrace,
	"rightbrace":  uinput.KeyRightbrace,
	"backslash":   uinput.KeyBackslash,
	"semicolon":   uinput.KeySemicolon,
	"apostrophe":  uinput.KeyApostrophe,
	"grave":       uinput.KeyGrave,
	"comma":       uinput.KeyComma,
	"dot":         uinput.KeyDot,
	"period":      uinput.KeyDot,
	"slash":       uinput.KeySlash,

	"kp0": uinput.KeyKp0, "kp1": uinput.KeyKp1, "kp2": uinput.KeyKp2,
	"kp3": uinput.KeyKp3, "kp4": uinput.KeyKp4, "kp5": uinput.KeyKp5,
	"kp6": uinput.KeyKp6, "kp7": uinput.KeyKp7, "kp8": uinput.KeyKp8,
	"kp9": uinput.KeyKp9,
	"kpplus":     uinput.KeyKpplus,
	"kpminus":    uinput.KeyKpminus,
	"kpasterisk": uinput.KeyKpasterisk,
	"kpslash":    uinput.KeyKpslash,
	"kpenter":    uinput.KeyKpenter,
	"kpdot":      uinput.KeyKpdot,

	"mute":       uinput.KeyMute,
	"volumeup":   uinput.KeyVolumeup,
	"volumedown": uinput.KeyVolumedown,
	"playpause":  uinput.KeyPlaypause,
	"nextsong":   uinput.KeyNextsong,
	"prevsong":   uinput.KeyPrevioussong,
	"stopcd":     uinput.KeyStopcd,
}

// runeCodes maps printable ASCII runes to key codes for __TYPE_ synthesis.
// Uppercase letters map to the same key as their lowercase form and are
// typed without shift; shifted punctuation (such as '!' or ':') has no
// entry, so TypeText skips it. A real shift-modified sequence would need
// the same press/release chording PressChord performs, which TypeText,
// being single-key-at-a-time, does not attempt.
var runeCodes = func() map[rune]int {
	m := make(map[rune]int, 40)
	for letter := 'a'; letter <= 'z'; letter++ {
		if code, ok := keyCodes[string(letter)]; ok {
			m[letter] = code
			m[letter-32] = code // uppercase maps to the same physical key
		}
	}
	for digit := '0'; digit <= '9'; digit++ {
		if code, ok := keyCodes[string(digit)]; ok {
			m[digit] = code
		}
	}
	m[' '] = uinput.KeySpace
	m['\n'] = uinput.KeyEnter
	m['\t'] = uinput.KeyTab
	m['.'] = uinput.KeyDot
	m[','] = uinput.KeyComma
	m['-'] = uinput.KeyMinus
	m['='] = uinput.KeyEqual
	m['/'] = uinput.KeySlash
	m[';'] = uinput.KeySemicolon
	m['\''] = uinput.KeyApostrophe
	m['`'] = uinput.KeyGrave
	return m
}()
