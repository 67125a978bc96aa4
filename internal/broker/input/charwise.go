package input

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkoba/go-droid-broker/internal/broker/executor"
)

// charwisePunctuation is the fixed punctuation set injected directly per
// character; anything outside it (and outside letters/digits) goes through
// the broadcast receiver.
const charwisePunctuation = `.,!?:;'"()-_@#$%&*+=/`

// TypeChars injects text one character at a time. This trades latency for
// compatibility breadth on input methods that drop whole-string injection;
// it is not the default path.
func (i *Injector) TypeChars(ctx context.Context, text string) {
	for _, r := range text {
		switch {
		case r == ' ':
			i.exec.Exec(ctx, fmt.Sprintf("input keyevent %d", KeySpace))
		case r == '\n':
			i.exec.Exec(ctx, fmt.Sprintf("input keyevent %d", KeyEnter))
		case isCharwiseDirect(r):
			i.exec.Exec(ctx, "input text "+executor.ShellEscape(string(r)))
		default:
			i.keyboardBroadcast(ctx, string(r))
		}
	}
}

// isCharwiseDirect reports whether r can be injected as a direct
// single-character text command.
func isCharwiseDirect(r rune) bool {
	if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
		return true
	}
	return strings.ContainsRune(charwisePunctuation, r)
}
