// Package launcher resolves human-friendly application names to packages
// and issues launch commands.
package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mkoba/go-droid-broker/internal/broker/executor"
)

// packageTable maps normalized app names, Chinese and English, to package
// identifiers. Unknown names pass through unchanged.
var packageTable = map[string]string{
	"设置": "com.android.settings",
	"settings": "com.android.settings",
	"相机": "com.android.camera",
	"camera": "com.android.camera",
	"相册": "com.android.gallery3d",
	"gallery": "com.android.gallery3d",
	"浏览器": "com.android.chrome",
	"browser": "com.android.chrome",
	"chrome": "com.android.chrome",
	"电话": "com.android.dialer",
	"phone": "com.android.dialer",
	"短信": "com.android.mms",
	"messages": "com.android.mms",
	"日历": "com.android.calendar",
	"calendar": "com.android.calendar",
	"时钟": "com.android.deskclock",
	"clock": "com.android.deskclock",
	"计算器": "com.android.calculator2",
	"calculator": "com.android.calculator2",
	"文件": "com.android.documentsui",
	"files": "com.android.documentsui",
	"应用商店": "com.android.vending",
	"play store": "com.android.vending",
	"微信": "com.tencent.mm",
	"wechat": "com.tencent.mm",
	"qq": "com.tencent.mobileqq",
	"支付宝": "com.eg.android.AlipayGphone",
	"alipay": "com.eg.android.AlipayGphone",
	"淘宝": "com.taobao.taobao",
	"taobao": "com.taobao.taobao",
	"抖音": "com.ss.android.ugc.aweme",
	"douyin": "com.ss.android.ugc.aweme",
	"tiktok": "com.zhiliaoapp.musically",
	"哔哩哔哩": "tv.danmaku.bili",
	"bilibili": "tv.danmaku.bili",
	"网易云音乐": "com.netease.cloudmusic",
	"music": "com.netease.cloudmusic",
	"地图": "com.autonavi.minimap",
	"maps": "com.autonavi.minimap",
}

// Launcher starts applications through the executor.
type Launcher struct {
	exec   executor.Executor
	logger *slog.Logger
}

// New creates a launcher dispatching through exec.
func New(exec executor.Executor, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{exec: exec, logger: logger}
}

// Launch starts the app identified by a human-friendly name or a package
// identifier. Resolution is best-effort: unknown names are passed through
// unchanged. The monkey launch is the most broadly reliable mechanism
// across target devices; its diagnostic stream is discarded.
func (l *Launcher) Launch(ctx context.Context, nameOrPackage string) {
	pkg := Resolve(nameOrPackage)
	l.logger.Info("Launching app", "input", nameOrPackage, "package", pkg)
	l.exec.Exec(ctx, fmt.Sprintf(
		"monkey -p %s -c android.intent.category.LAUNCHER 1 2>/dev/null", pkg))
}

// Resolve maps a name to a package identifier. Inputs that already look
// like package identifiers (contain a separator) are used verbatim.
func Resolve(nameOrPackage string) string {
	if strings.Contains(nameOrPackage, ".") {
		return nameOrPackage
	}
	normalized := strings.ToLower(strings.TrimSpace(nameOrPackage))
	if pkg, ok := packageTable[normalized]; ok {
		return pkg
	}
	return nameOrPackage
}
