package launcher

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExecutor struct {
	mu       sync.Mutex
	commands []string
}

func (r *recordingExecutor) Exec(_ context.Context, command string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, command)
	return ""
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"chinese name", "设置", "com.android.settings"},
		{"english name", "settings", "com.android.settings"},
		{"case and whitespace normalized", "  Settings ", "com.android.settings"},
		{"package identifier verbatim", "com.custom.app", "com.custom.app"},
		{"unknown name passes through", "mystery app", "mystery app"},
		{"wechat", "微信", "com.tencent.mm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.input))
		})
	}
}

func TestLaunch_IssuesMonkeyCommand(t *testing.T) {
	exec := &recordingExecutor{}
	l := New(exec, nil)

	l.Launch(context.Background(), "设置")

	require.Len(t, exec.commands, 1)
	assert.Equal(t,
		"monkey -p com.android.settings -c android.intent.category.LAUNCHER 1 2>/dev/null",
		exec.commands[0])
}

func TestLaunch_PassthroughPackage(t *testing.T) {
	exec := &recordingExecutor{}
	l := New(exec, nil)

	l.Launch(context.Background(), "com.custom.app")

	require.Len(t, exec.commands, 1)
	assert.Contains(t, exec.commands[0], "monkey -p com.custom.app ")
}
