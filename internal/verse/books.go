// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verse recognizes Bible references in commentary text and
// normalizes book names to OSIS codes. The alias table covers English
// names and abbreviations plus Simplified and Traditional Chinese book
// names, so mixed-language commentary resolves to one canonical code.
package verse

import (
	"regexp"
	"strings"
)

// bookAliases maps lowercased book tokens to OSIS codes.
var bookAliases = map[string]string{}

func addAliases(osis string, aliases ...string) {
	for _, a := range aliases {
		bookAliases[strings.ToLower(a)] = osis
	}
}

func init() {
	// Old Testament.
	addAliases("Gen", "gen", "genesis", "创", "創", "创世记", "創世記")
	addAliases("Exod", "ex", "exo", "exod", "exodus", "出", "出埃及记", "出埃及記")
	addAliases("Lev", "lev", "leviticus", "利", "利未记", "利未記")
	addAliases("Num", "num", "numbers", "民", "民数记", "民數記")
	addAliases("Deut", "deut", "deuteronomy", "申", "申命记", "申命記")
	addAliases("Josh", "josh", "joshua", "书", "書", "约书亚记", "約書亞記")
	addAliases("Judg", "judg", "judges", "士", "士师记", "士師記")
	addAliases("Ruth", "ruth", "得", "路得记", "路得記")
	addAliases("1Sam", "1 sam", "1sam", "i sam", "1samuel", "1 samuel", "撒上", "撒母耳记上", "撒母耳記上")
	addAliases("2Sam", "2 sam", "2sam", "ii sam", "2samuel", "2 samuel", "撒下", "撒母耳记下", "撒母耳記下")
	addAliases("1Kgs", "1 kgs", "1kgs", "1 kings", "i kgs", "王上", "列王纪上", "列王紀上")
	addAliases("2Kgs", "2 kgs", "2kgs", "2 kings", "ii kgs", "王下", "列王纪下", "列王紀下")
	addAliases("1Chr", "1 chr", "1chr", "1 chronicles", "i chr", "代上", "历代志上", "歷代志上")
	addAliases("2Chr", "2 chr", "2chr", "2 chronicles", "ii chr", "代下", "历代志下", "歷代志下")
	addAliases("Ezra", "ezra", "拉", "以斯拉记", "以斯拉記")
	addAliases("Neh", "neh", "nehemiah", "尼", "尼希米记", "尼希米記")
	addAliases("Esth", "esth", "esther", "斯", "以斯帖记", "以斯帖記")
	addAliases("Job", "job", "伯", "约伯记", "約伯記")
	addAliases("Ps", "ps", "psalm", "psalms", "诗", "詩", "诗篇", "詩篇")
	addAliases("Prov", "prov", "proverbs", "箴", "箴言")
	addAliases("Eccl", "eccl", "ecclesiastes", "传", "傳", "传道书", "傳道書")
	addAliases("Song", "song", "song of songs", "song of solomon", "雅", "雅歌")
	addAliases("Isa", "isa", "isaiah", "赛", "賽", "以赛亚书", "以賽亞書")
	addAliases("Jer", "jer", "jeremiah", "耶", "耶利米书", "耶利米書")
	addAliases("Lam", "lam", "lamentations", "哀", "耶利米哀歌")
	addAliases("Ezek", "ezek", "ezekiel", "结", "結", "以西结书", "以西結書")
	addAliases("Dan", "dan", "daniel", "但", "但以理书", "但以理書")
	addAliases("Hos", "hos", "hosea", "何", "何西阿书", "何西阿書")
	addAliases("Joel", "joel", "珥", "约珥书", "約珥書")
	addAliases("Amos", "amos", "摩", "阿摩司书", "阿摩司書")
	addAliases("Obad", "obad", "obadiah", "俄", "俄巴底亚书", "俄巴底亞書")
	addAliases("Jonah", "jonah", "拿", "约拿书", "約拿書")
	addAliases("Mic", "mic", "micah", "弥", "彌", "弥迦书", "彌迦書")
	addAliases("Nah", "nah", "nahum", "鸿", "鴻", "那鸿书", "那鴻書")
	addAliases("Hab", "hab", "habakkuk", "哈", "哈巴谷书", "哈巴谷書")
	addAliases("Zeph", "zeph", "zephaniah", "番", "西番雅书", "西番雅書")
	addAliases("Hag", "hag", "haggai", "该", "該", "哈该书", "哈該書")
	addAliases("Zech", "zech", "zechariah", "亚", "亞", "撒迦利亚书", "撒迦利亞書")
	addAliases("Mal", "mal", "malachi", "玛", "瑪", "玛拉基书", "瑪拉基書")

	// New Testament.
	addAliases("Matt", "matt", "mt", "matthew", "太", "马太福音", "馬太福音")
	addAliases("Mark", "mark", "mk", "可", "马可福音", "馬可福音")
	addAliases("Luke", "luke", "lk", "路", "路加福音")
	addAliases("John", "john", "jn", "约", "約", "约翰福音", "約翰福音")
	addAliases("Acts", "acts", "act", "徒", "使徒行传", "使徒行傳")
	addAliases("Rom", "rom", "romans", "罗", "羅", "罗马书", "羅馬書")
	addAliases("1Cor", "1 cor", "1cor", "i cor", "1 corinthians", "林前", "哥林多前书", "哥林多前書")
	addAliases("2Cor", "2 cor", "2cor", "ii cor", "2 corinthians", "林后", "林後", "哥林多后书", "哥林多後書")
	addAliases("Gal", "gal", "galatians", "加", "加拉太书", "加拉太書")
	addAliases("Eph", "eph", "ephesians", "弗", "以弗所书", "以弗所書")
	addAliases("Phil", "phil", "philippians", "腓", "腓立比书", "腓立比書")
	addAliases("Col", "col", "colossians", "西", "歌罗西书", "歌羅西書")
	addAliases("1Thess", "1 thess", "1thess", "i thess", "帖前", "帖撒罗尼迦前书", "帖撒羅尼迦前書")
	addAliases("2Thess", "2 thess", "2thess", "帖后", "帖後", "帖撒罗尼迦后书", "帖撒羅尼迦後書")
	addAliases("1Tim", "1 tim", "1tim", "i tim", "提前", "提摩太前书", "提摩太前書")
	addAliases("2Tim", "2 tim", "2tim", "提后", "提後", "提摩太后书", "提摩太後書")
	addAliases("Titus", "titus", "多", "提多书", "提多書")
	addAliases("Phlm", "phlm", "philemon", "门", "門", "腓利门书", "腓利門書")
	addAliases("Heb", "heb", "hebrews", "来", "來", "希伯来书", "希伯來書")
	addAliases("Jas", "jas", "james", "雅各书", "雅各書")
	addAliases("1Pet", "1 pet", "1pet", "i pet", "彼前", "彼得前书", "彼得前書")
	addAliases("2Pet", "2 pet", "2pet", "彼后", "彼後", "彼得后书", "彼得後書")
	addAliases("1John", "1 john", "1john", "i john", "约一", "約一", "约壹", "約壹", "约翰一书", "約翰一書")
	addAliases("2John", "2 john", "2john", "约二", "約二", "约贰", "約貳", "约翰二书", "約翰二書")
	addAliases("3John", "3 john", "3john", "约三", "約三", "约叁", "約參", "约翰三书", "約翰三書")
	addAliases("Jude", "jude", "犹", "猶", "犹大书", "猶大書")
	addAliases("Rev", "rev", "revelation", "启", "啟", "启示录", "啟示錄")

	compilePatterns()
}

var reToken = regexp.MustCompile(`\s+`)

// NormalizeBook resolves a book token (any alias, any case) to its OSIS
// code. ok is false for unrecognized tokens.
func NormalizeBook(token string) (osis string, ok bool) {
	t := strings.ToLower(strings.TrimSpace(token))
	t = reToken.ReplaceAllString(t, " ")
	osis, ok = bookAliases[t]
	return osis, ok
}

// maxChapters gives the standard chapter count per book, used to reject
// junk matches (page numbers, years).
var maxChapters = map[string]int{
	"Gen": 50, "Exod": 40, "Lev": 27, "Num": 36, "Deut": 34,
	"Josh": 24, "Judg": 21, "Ruth": 4, "1Sam": 31, "2Sam": 24,
	"1Kgs": 22, "2Kgs": 25, "1Chr": 29, "2Chr": 36, "Ezra": 10,
	"Neh": 13, "Esth": 10, "Job": 42, "Ps": 150, "Prov": 31,
	"Eccl": 12, "Song": 8, "Isa": 66, "Jer": 52, "Lam": 5,
	"Ezek": 48, "Dan": 12, "Hos": 14, "Joel": 3, "Amos": 9,
	"Obad": 1, "Jonah": 4, "Mic": 7, "Nah": 3, "Hab": 3,
	"Zeph": 3, "Hag": 2, "Zech": 14, "Mal": 4,
	"Matt": 28, "Mark": 16, "Luke": 24, "John": 21, "Acts": 28,
	"Rom": 16, "1Cor": 16, "2Cor": 13, "Gal": 6, "Eph": 6,
	"Phil": 4, "Col": 4, "1Thess": 5, "2Thess": 3, "1Tim": 6,
	"2Tim": 4, "Titus": 3, "Phlm": 1, "Heb": 13, "Jas": 5,
	"1Pet": 5, "2Pet": 3, "1John": 5, "2John": 1, "3John": 1,
	"Jude": 1, "Rev": 22,
}

// ChapterInRange reports whether chapter is plausible for the book.
func ChapterInRange(osis string, chapter int) bool {
	if osis == "" || chapter < 1 {
		return false
	}
	mx, known := maxChapters[osis]
	if !known {
		return chapter <= 200
	}
	return chapter <= mx
}
