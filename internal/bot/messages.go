package bot

import "fmt"

// User-facing strings. The bot's audience is Arabic-speaking; every error
// path ends in one of these, never in silence.
const (
	msgWelcome = "🌟 مرحباً بكم في بوت حلقات المعلمة ولاء\n\n" +
		"يمكنك اختيار القسم المطلوب من القائمة أدناه"
	msgBackToMain = "🌟 تم العودة إلى القائمة الرئيسية\n" +
		"يمكنك اختيار القسم المطلوب من القائمة أدناه"
	msgRootMenuName   = "الرئيسية"
	msgInvalidChoice  = "الرجاء اختيار خيار صحيح."
	msgDownloading    = "جاري تحميل الملف..."
	msgDownloadFailed = "تعذر تحميل الملف. يرجى المحاولة مرة أخرى."
	msgSendFailed     = "حدث خطأ أثناء إرسال الملف."
	msgLinksHeader    = "<b>📂 تدريبات:</b>\n\n"
	msgReloadOK       = "✅ تم تحديث القائمة بنجاح."
	msgReloadFailed   = "⚠️ حدث خطأ أثناء تحديث القائمة. حاول لاحقاً."
	msgNotAuthorized  = "❌ أنت غير مصرح لك باستخدام هذا الأمر."
	msgGenericError   = "حدث خطأ. الرجاء المحاولة مرة أخرى."
)

// menuTitle names the rendered menu level.
func menuTitle(name string) string {
	if name == "" {
		name = msgRootMenuName
	}
	return fmt.Sprintf("قائمة %s:", name)
}

// linkFallbackLabel names an unlabeled external link by position.
func linkFallbackLabel(i int) string {
	return fmt.Sprintf("تدريب %d", i+1)
}
