package bot

import "fmt"

// Small per-language catalog. Anything missing in a language falls back
// to English so a half-translated catalog never breaks a reply.
var catalog = map[string]map[string]string{
	"en": {
		"start":             "Hi! Send me a video or music link and I'll download it for you.\nOpen the menu for history, stats and accounts.",
		"help":              "How it works:\n• Guests: %d downloads per day\n• With an account: %d per day + full history\n• Create account: name → username → password (8-12 letters/digits)\n• Send /start anytime to come back here",
		"menu_user":         "Welcome back to your panel",
		"menu_guest":        "Create an account to keep history and raise your daily limit",
		"send_link":         "Send me a link, or use the menu",
		"unsupported":       "That site isn't supported yet",
		"invalid_url":       "That doesn't look like a valid link",
		"quota_reached":     "You've used all %d downloads for today.\nCreate an account to raise the limit!",
		"queued":            "⏳ Queued...",
		"downloading":       "⏳ Downloading... %.0f%%",
		"canceled":          "❌ Canceled",
		"failed":            "⚠️ %s",
		"delivered":         "✅ %s",
		"no_history":        "No downloads yet!",
		"history_header":    "Your recent downloads:",
		"stats":             "Your stats\n\nTotal: %d\nToday: %d\nTraffic: %.1f MB",
		"register_name":     "Send your full name",
		"register_username": "Send a username (without @)",
		"username_short":    "That username is too short!",
		"register_password": "Send a password (8-12 letters and digits)",
		"password_bad":      "The password must be 8-12 letters and digits!",
		"register_done":     "Account created! Send /start and enjoy.",
		"register_taken":    "That username is already taken, pick another",
		"register_exists":   "You already have an account!",
		"login_username":    "Send your username",
		"login_password":    "Send your password",
		"login_ok":          "Welcome back, %s!",
		"login_bad":         "Wrong username or password",
		"logout":            "Logged out! Send /start",
		"lang_set":          "Language updated",
		"btn_menu":          "Menu",
		"btn_downloads":     "📁 My downloads",
		"btn_stats":         "📊 My stats",
		"btn_register":      "👤 Create account",
		"btn_login":         "🔑 Log in",
		"btn_logout":        "🚪 Log out",
		"btn_help":          "❓ Help",
		"btn_lang":          "🌐 فارسی / English",
		"btn_cancel":        "Cancel",
	},
	"fa": {
		"start":             "سلام! لینک ویدیو یا آهنگ رو بفرست تا برات دانلود کنم.\nبرای تاریخچه و آمار، منو رو باز کن.",
		"help":              "راهنما:\n• بدون حساب: %d دانلود در روز\n• با حساب: %d در روز + تاریخچه کامل\n• ساخت حساب: نام → یوزرنیم → پسورد (۸-۱۲ حرف/عدد)\n• هر وقت خواستی /start بزن",
		"menu_user":         "به پنل کاربریت خوش اومدی",
		"menu_guest":        "برای ذخیره تاریخچه و سقف بیشتر، حساب بساز",
		"send_link":         "لینک بفرست یا از منو استفاده کن",
		"unsupported":       "این سایت هنوز پشتیبانی نمی‌شه",
		"invalid_url":       "این لینک معتبر نیست",
		"quota_reached":     "امروز %d تا دانلود کردی!\nحساب بساز تا سقف بیشتر بشه",
		"queued":            "⏳ در صف...",
		"downloading":       "⏳ در حال دانلود... %.0f%%",
		"canceled":          "❌ لغو شد",
		"failed":            "⚠️ %s",
		"delivered":         "✅ %s",
		"no_history":        "هنوز دانلودی نداری!",
		"history_header":    "آخرین دانلودها:",
		"stats":             "آمار دانلودت\n\nکل: %d\nامروز: %d\nترافیک: %.1f مگابایت",
		"register_name":     "نام و نام خانوادگی رو بفرست",
		"register_username": "یوزرنیم رو بفرست (بدون @)",
		"username_short":    "یوزرنیم کوتاهه!",
		"register_password": "پسورد بفرست (۸-۱۲ حرف و عدد)",
		"password_bad":      "پسورد باید ۸-۱۲ حرف و عدد باشه!",
		"register_done":     "حساب ساخته شد! /start بزن و لذت ببر.",
		"register_taken":    "این یوزرنیم قبلاً استفاده شده!",
		"register_exists":   "شما قبلاً حساب دارید!",
		"login_username":    "یوزرنیم رو بفرست",
		"login_password":    "پسورد رو بفرست",
		"login_ok":          "خوش برگشتی %s!",
		"login_bad":         "یوزرنیم یا پسورد اشتباهه",
		"logout":            "از حساب خارج شدی! /start بزن",
		"lang_set":          "زبان عوض شد",
		"btn_menu":          "منو",
		"btn_downloads":     "📁 دانلودهای من",
		"btn_stats":         "📊 آمار من",
		"btn_register":      "👤 ساخت حساب",
		"btn_login":         "🔑 ورود",
		"btn_logout":        "🚪 خروج از حساب",
		"btn_help":          "❓ راهنما",
		"btn_lang":          "🌐 English / فارسی",
		"btn_cancel":        "لغو",
	},
}

func msg(lang, key string) string {
	if m, ok := catalog[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	return catalog["en"][key]
}

func msgf(lang, key string, args ...interface{}) string {
	return fmt.Sprintf(msg(lang, key), args...)
}
