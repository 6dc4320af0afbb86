package classify

import "vacradar/internal/vacancy"

// Rule describes one target category. Keywords gate inclusion, Exclude
// overrides inclusion, RequiresContext demands the video-production
// contextual confirmation before the rule can win.
type Rule struct {
	Category        vacancy.Category
	Keywords        []string
	Exclude         []string
	RequiresContext bool
}

// DefaultRules is the built-in rule table. Order is precedence: the first
// rule whose checks all pass wins, and a candidate matches at most one
// category. Narrow rules sit before broad ones ("шеф-редактор" before
// "редактор", whose keywords include bare "editor").
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: vacancy.CategoryScriptwriter,
			Keywords: []string{
				"сценарист", "screenwriter", "копирайтер-сценарист",
				"сценаристом", "сценариста", "сценаристку", "сценаристов",
				"автор сценариев", "автор сценария", "script writer",
				"scriptwriter", "сценарное", "сценарий",
			},
		},
		{
			Category: vacancy.CategoryChiefEditor,
			Keywords: []string{
				"шеф-редактор", "шеф редактор", "главный редактор",
				"шеф-редактора", "шеф редактора", "chief editor",
				"ведущий редактор", "старший редактор", "senior editor",
				"руководитель редакции", "head editor",
			},
			Exclude: []string{
				"книжное издательство", "книжный",
				"журнал", "газета", "онлайн-медиа", "онлайн медиа",
				"издательств", "журналист", "новостной",
			},
			RequiresContext: true,
		},
		{
			Category: vacancy.CategoryEditor,
			Keywords: []string{
				"редактор видео", "видеоредактор", "видео редактор",
				"video editor", "монтажер", "монтажёр", "монтажера",
				"редактор роликов", "видеомонтажер", "видео-редактор",
				"editor", "монтаж видео", "монтажист",
				"colorist", "колорист", "color grading",
				"режиссер монтажа", "режиссёр монтажа",
			},
			Exclude: []string{
				"редактор текста", "текстовый редактор",
				"литературный редактор", "редактор статей",
				"книжный редактор", "редактор контента", "контент-редактор",
				"smm редактор", "smm-редактор", "копирайтер",
				"редактор сайта", "веб-редактор",
			},
			RequiresContext: true,
		},
	}
}

// contextKeywords mark video-production context; the context analyzer
// requires a minimum number of them before a context-gated rule may win.
var contextKeywords = []string{
	"видео", "видеопроизводство", "видеопродакшн", "video production",
	"монтаж", "постпродакшн", "постпродакшен", "post-production", "пост-продакшн",
	"ролик", "видеоролик", "видеоконтент",
	"съёмка", "съемка", "filming", "shooting",
	"продакшн", "продакшен", "production",
	"студия видео", "видеостудия", "video studio",
	"youtube", "ютуб", "тикток", "tiktok", "reels", "рилс",
	"креатив", "creative production",
	"видеограф", "оператор", "cinematographer", "кинематограф",
	"видео контент", "video content",
	"монтажер", "видеомонтаж", "видео монтаж",
	"premiere", "after effects", "davinci", "final cut",
	"видеоблог", "видео блог", "влог", "vlog",
	"медиапроизводство", "медиа производство",
}
