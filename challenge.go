package wikivault

import "strings"

// Marker strings that identify anti-bot interstitials. Two families are kept
// apart on purpose: captchaMarkers appear in CAPTCHA widgets themselves,
// challengeMarkers identify the challenge platform serving them. Requiring
// both outside of error statuses avoids false positives on articles that
// merely mention CAPTCHAs.
var (
	captchaMarkers = []string{
		"captcha",
		"please verify you are a human",
		"verify you are human",
		"g-recaptcha",
		"hcaptcha",
	}

	challengeMarkers = []string{
		"cf-challenge",
		"challenge-platform",
		"challenges.cloudflare.com",
		"cf-ray",
		"ray id:",
		"attention required!",
	}

	interstitialMarkers = []string{
		"just a moment",
		"challenge-platform",
		"cf-chl",
		"attention required!",
		"checking if the site connection is secure",
		"please wait while we check your browser",
	}
)

// IsBlockedResponse reports whether an HTTP response is an anti-bot block
// rather than real content. A response is blocked if the status is one of
// 403, 429 or 503 and any challenge-related marker is present, or if both a
// CAPTCHA marker and a challenge-platform marker appear regardless of status.
func IsBlockedResponse(html string, status int) bool {
	if html == "" {
		return false
	}

	lower := strings.ToLower(html)
	hasCaptcha := containsAny(lower, captchaMarkers)
	hasChallenge := containsAny(lower, challengeMarkers)

	switch status {
	case 403, 429, 503:
		return hasCaptcha || hasChallenge
	}
	return hasCaptcha && hasChallenge
}

// IsChallengePage reports whether rendered page content is a browser
// verification interstitial. Used by the browser fetcher, which sees the
// page after redirects and cannot rely on the HTTP status.
func IsChallengePage(html string) bool {
	return containsAny(strings.ToLower(html), interstitialMarkers)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
