package admission

import "regexp"

// Pattern sets matched as substrings against the lowercased URL string.

// calendarPatterns cover event/calendar URL spaces, which generate one
// page per day forever.
var calendarPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/calendar`),
	regexp.MustCompile(`/event(s)?/`),
	regexp.MustCompile(`/event-calendar`),
	regexp.MustCompile(`/ical`),
	regexp.MustCompile(`\.ics$`),
	regexp.MustCompile(`[?&]calendar`),
	regexp.MustCompile(`[?&]event`),
	regexp.MustCompile(`[?&]date=`),
	regexp.MustCompile(`[?&]month=`),
	regexp.MustCompile(`[?&]year=`),
	regexp.MustCompile(`/\d{4}/\d{2}/\d{2}`),
}

// knownTrapPatterns cover authentication and admin surfaces that hold no
// crawlable content.
var knownTrapPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/wp-admin`),
	regexp.MustCompile(`/wp-login`),
	regexp.MustCompile(`/login`),
	regexp.MustCompile(`/logout`),
	regexp.MustCompile(`/signin`),
	regexp.MustCompile(`/signout`),
	regexp.MustCompile(`/register`),
	regexp.MustCompile(`/signup`),
	regexp.MustCompile(`/user/`),
	regexp.MustCompile(`/account`),
	regexp.MustCompile(`/profile`),
	regexp.MustCompile(`/dashboard`),
	regexp.MustCompile(`/admin`),
}

// legitimatePatterns mark URL shapes that commonly hold real content at
// depth; the trap detector relaxes its bounds for them.
var legitimatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`/wiki/`),
	regexp.MustCompile(`/archive/`),
	regexp.MustCompile(`/docs/`),
	regexp.MustCompile(`/pub/`),
	regexp.MustCompile(`/repository/`),
	regexp.MustCompile(`/faculty/`),
	regexp.MustCompile(`/course(s)?/`),
	regexp.MustCompile(`/research/`),
	regexp.MustCompile(`/project(s)?/`),
	regexp.MustCompile(`/publication(s)?/`),
}

// queryFormatPatterns reject alternate-format exports of pages already
// crawled in HTML form.
var queryFormatPatterns = []*regexp.Regexp{
	regexp.MustCompile(`format=(txt|pdf|csv)`),
	regexp.MustCompile(`export=(txt|pdf)`),
	regexp.MustCompile(`download=`),
}

// actionEndpoints are interactive endpoints that multiply URL space
// without adding content.
var actionEndpoints = []string{
	"/search?",
	"?search=",
	"/print/",
	"?print=",
}

// blockedSubdomains are sibling academic departments outside the crawl
// scope. They are rejected by name because several of them are
// accidental suffix matches of the allowed domains (physics ~ ics,
// economics ~ cs).
var blockedSubdomains = []string{
	"physics",
	"economics",
	"chem",
	"bio",
	"math",
	"engineering",
	"cecs",
	"eecs",
	"nacs",
}

// invalidExtensions lists binary and non-HTML document extensions that
// are never fetched.
var invalidExtensions = map[string]struct{}{
	"css": {}, "js": {}, "bmp": {}, "gif": {}, "jpe": {}, "jpeg": {}, "jpg": {},
	"ico": {}, "png": {}, "tif": {}, "tiff": {}, "mid": {}, "mp2": {}, "mp3": {},
	"mp4": {}, "wav": {}, "avi": {}, "mov": {}, "mpeg": {}, "ram": {}, "m4v": {},
	"mkv": {}, "ogg": {}, "ogv": {}, "pdf": {}, "ps": {}, "eps": {}, "tex": {},
	"ppt": {}, "pptx": {}, "doc": {}, "docx": {}, "xls": {}, "xlsx": {},
	"names": {}, "data": {}, "dat": {}, "exe": {}, "bz2": {}, "tar": {},
	"msi": {}, "bin": {}, "7z": {}, "psd": {}, "dmg": {}, "iso": {}, "epub": {},
	"dll": {}, "cnf": {}, "tgz": {}, "sha1": {}, "thmx": {}, "mso": {},
	"arff": {}, "rtf": {}, "jar": {}, "csv": {}, "rm": {}, "smil": {},
	"wmv": {}, "swf": {}, "wma": {}, "zip": {}, "rar": {}, "gz": {},
}

// allowedExtensions are HTML-bearing extensions that override the
// invalid set.
var allowedExtensions = map[string]struct{}{
	"html": {}, "htm": {}, "php": {}, "asp": {}, "aspx": {}, "jsp": {},
	"shtml": {}, "xhtml": {},
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
