package identity

import "strings"

var emojiPalette = [64]string{
	"🦊", "🐳", "🦄", "🐙", "🦉", "🐝", "🦋", "🐢",
	"🐬", "🦁", "🐯", "🐼", "🐨", "🐸", "🐵", "🦖",
	"🌵", "🌻", "🍄", "🌈", "🔥", "🌊", "⚡", "❄️",
	"🌙", "⭐", "☀️", "🍀", "🌶️", "🍉", "🍋", "🍒",
	"🥑", "🍩", "🍪", "🧀", "🍕", "🌮", "🍣", "🍦",
	"🎈", "🎲", "🎯", "🎸", "🎹", "🎺", "🎨", "🧩",
	"🚀", "🛸", "⛵", "🚲", "🏔️", "🏝️", "🗿", "🏰",
	"💎", "🔮", "🧭", "🔑", "🪐", "🧲", "🛡️", "👑",
}

const emojiHashLength = 4

// EmojiHash returns a short, deterministic emoji fingerprint of an address.
// Addresses are compared case-insensitively; invalid input yields "".
func EmojiHash(addr string) string {
	if !IsAddress(addr) {
		return ""
	}
	sum := Keccak256([]byte(strings.ToLower(addr)))
	var sb strings.Builder
	for i := 0; i < emojiHashLength; i++ {
		sb.WriteString(emojiPalette[sum[i]&0x3f])
	}
	return sb.String()
}
