// Package naming cleans raw media filenames into comparable titles and
// extracts year and episode hints left behind by release naming schemes.
package naming

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	yearRegex      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	yearParenRegex = regexp.MustCompile(`\((\d{4})\)`)
	episodeSERegex = regexp.MustCompile(`[Ss](\d{1,2})[Ee](\d{1,2})`)
	episodeXRegex  = regexp.MustCompile(`\b(\d{1,2})x(\d{1,2})\b`)

	bracketPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\[[^\]]*\]`),
		regexp.MustCompile(`\([^)]*\)`),
		regexp.MustCompile(`\{[^}]*\}`),
		regexp.MustCompile(`【[^】]*】`),
		regexp.MustCompile(`（[^）]*）`),
	}

	spaceRegex = regexp.MustCompile(`\s+`)

	releasePatterns []*regexp.Regexp
)

func init() {
	patterns := []string{
		`\b\d{3,4}[pi]\b`,
		`\b(4K|UHD)\b`,
		`\b(HDR10\+?|HDR|DoVi|DV|HLG|SDR)\b`,
		`\b(DTS-HD|DTS-X|DTS|TrueHD|Atmos|AAC|AC3|EAC3|DD\+?|DDP|FLAC|OPUS)\b`,
		`\b\d\.\d\b`,
		`\b(BluRay|Blu-ray|BDRip|BRRip|REMUX|WEB-DL|WEBDL|WEBRip|WEB)\b`,
		`\b(HDTV|DVDRip|DVDSCR|DVD)\b`,
		`\b(AMZN|NF|DSNP|HMAX|ATVP|HULU|PCOK|PMTP)\b`,
		`\b(x264|x265|x266|HEVC|AVC|AV1|H\.?264|H\.?265)\b`,
		`\b(PROPER|REPACK|iNTERNAL|LIMITED|EXTENDED|UNCUT|REMASTERED)\b`,
		`\b(DUAL|MULTI|DUB|SUB|SUBS|SUBBED)\b`,
		`\b(RARBG|YTS|YIFY|FGT|CMRG|SPARKS)\b`,
		`\bv\d+\b`,
		`\b(8bit|10bit|12bit)\b`,
	}

	releasePatterns = make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		releasePatterns = append(releasePatterns, regexp.MustCompile(`(?i)`+pattern))
	}
}

// Normalize reduces a file's base name to a clean, comparable title.
// It strips the extension, removes bracketed tag segments and release
// markers, and collapses separator characters to single spaces. An empty
// result is not an error; it simply scores zero downstream.
func Normalize(fileName string) string {
	s := norm.NFC.String(StripExtension(fileName))

	for _, re := range bracketPatterns {
		s = re.ReplaceAllString(s, " ")
	}

	s = strings.ReplaceAll(s, ".", " ")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	for _, re := range releasePatterns {
		s = re.ReplaceAllString(s, " ")
	}

	return strings.TrimSpace(spaceRegex.ReplaceAllString(s, " "))
}

// StripExtension removes the text after the last dot, provided the dot
// occurs after the last path separator.
func StripExtension(fileName string) string {
	lastDot := strings.LastIndex(fileName, ".")
	lastSep := strings.LastIndexAny(fileName, `/\`)
	if lastDot > lastSep {
		return fileName[:lastDot]
	}
	return fileName
}

// ExtractYear pulls a plausible release year out of a raw filename.
// A parenthesized year wins; otherwise the last bare 19xx/20xx token that
// is not a resolution value (1920, 1280, 1440, 2160) is used.
func ExtractYear(s string) string {
	match := yearParenRegex.FindStringSubmatch(s)
	if len(match) > 1 {
		return match[1]
	}

	matches := yearRegex.FindAllString(s, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		year := matches[i]
		switch year {
		case "1920", "1280", "1440", "2160":
			continue
		}
		return year
	}

	return ""
}

// ExtractEpisode parses season/episode hints in SxxEyy or NxM form.
func ExtractEpisode(s string) (season, episode int, ok bool) {
	match := episodeSERegex.FindStringSubmatch(s)
	if len(match) > 2 {
		season, _ = strconv.Atoi(match[1])
		episode, _ = strconv.Atoi(match[2])
		return season, episode, true
	}

	match = episodeXRegex.FindStringSubmatch(s)
	if len(match) > 2 {
		season, _ = strconv.Atoi(match[1])
		episode, _ = strconv.Atoi(match[2])
		return season, episode, true
	}

	return 0, 0, false
}
