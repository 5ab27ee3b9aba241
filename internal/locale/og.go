package locale

import (
	"regexp"
	"strings"
)

var fullLocalePattern = regexp.MustCompile(`^[a-z]{2,3}_[A-Z]{2,3}$`)

// ogLocales maps two-letter language prefixes to the Open Graph locale used
// when only a short code is available.
var ogLocales = map[string]string{
	"en": "en_US",
	"it": "it_IT",
	"fr": "fr_FR",
	"de": "de_DE",
	"es": "es_ES",
	"pt": "pt_PT",
	"nl": "nl_NL",
	"ru": "ru_RU",
	"ja": "ja_JP",
	"ko": "ko_KR",
	"zh": "zh_CN",
	"ar": "ar_SA",
	"hi": "hi_IN",
	"pl": "pl_PL",
	"sv": "sv_SE",
	"da": "da_DK",
	"fi": "fi_FI",
	"nb": "nb_NO",
	"tr": "tr_TR",
	"cs": "cs_CZ",
	"ro": "ro_RO",
	"hu": "hu_HU",
	"el": "el_GR",
	"he": "he_IL",
	"th": "th_TH",
	"vi": "vi_VN",
	"uk": "uk_UA",
	"bg": "bg_BG",
	"hr": "hr_HR",
	"sk": "sk_SK",
	"sl": "sl_SI",
	"et": "et_EE",
	"lv": "lv_LV",
	"lt": "lt_LT",
}

// ToOG converts a locale or short language code to the ll_CC form expected by
// og:locale. Values already in that form pass through, unknown prefixes are
// returned unchanged.
func ToOG(value string) string {
	if fullLocalePattern.MatchString(value) {
		return value
	}
	prefix := value
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	if mapped, ok := ogLocales[strings.ToLower(prefix)]; ok {
		return mapped
	}
	return value
}

// LangAttr renders a locale as an HTML lang attribute value (it_IT -> it-IT).
func LangAttr(value string) string {
	return strings.ReplaceAll(value, "_", "-")
}
