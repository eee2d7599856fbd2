// Package imagefilter decides whether a candidate image URL belongs to
// article body content, as opposed to ads, navigation chrome, or branding.
package imagefilter

import (
	"bytes"
	"context"
	"image"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	// Decoders registered for the optional header probe.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

const (
	// minContentDimension is the smallest width or height considered
	// body content; anything under it is treated as chrome.
	minContentDimension = 150

	probeTimeout   = 5 * time.Second
	probeMaxBytes  = 64 * 1024
	probeRangeHint = "bytes=0-65535"
)

// adNavTokens are URL path tokens that indicate advertising, navigation,
// or branding assets rather than article content.
var adNavTokens = map[string]struct{}{
	"ad": {}, "ads": {}, "adv": {}, "advert": {}, "advertisement": {},
	"banner": {}, "sponsor": {}, "promo": {}, "popup": {},
	"logo": {}, "icon": {}, "icons": {}, "favicon": {}, "sprite": {},
	"nav": {}, "menu": {}, "footer": {}, "button": {}, "btn": {},
	"badge": {}, "avatar": {}, "share": {}, "sns": {}, "watermark": {},
}

// smallSizeTokens indicate tracking pixels and spacer images.
var smallSizeTokens = map[string]struct{}{
	"pixel": {}, "spacer": {}, "blank": {}, "1x1": {}, "thumb": {},
}

// adDomainFragments are known ad/tracker host fragments.
var adDomainFragments = []string{
	"doubleclick",
	"googlesyndication",
	"googleadservices",
	"google-analytics",
	"adservice",
	"amazon-adsystem",
	"taboola",
	"outbrain",
	"criteo",
	"scorecardresearch",
	"moatads",
}

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".bmp": {},
}

var dimensionPattern = regexp.MustCompile(`(\d{2,4})x(\d{2,4})`)

// Filter applies the content-image heuristics, with an optional network
// probe of the image header bytes.
type Filter struct {
	probeEnabled bool
	httpClient   *http.Client
}

// New creates a filter. When probeEnabled is set, Probe fetches image
// headers; IsContentImage itself stays a pure predicate.
func New(probeEnabled bool) *Filter {
	return &Filter{
		probeEnabled: probeEnabled,
		httpClient:   &http.Client{Timeout: probeTimeout},
	}
}

// ProbeEnabled reports whether the network probe is active.
func (f *Filter) ProbeEnabled() bool {
	return f.probeEnabled
}

// IsContentImage is a pure predicate over the URL string. It rejects
// ad/navigation/branding assets, tracking-pixel names, URLs without a
// recognized image extension, embedded WIDTHxHEIGHT patterns with either
// dimension under 150px, and known ad/tracker domains.
func (f *Filter) IsContentImage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	host := strings.ToLower(u.Host)
	for _, fragment := range adDomainFragments {
		if strings.Contains(host, fragment) {
			return false
		}
	}

	path := strings.ToLower(u.Path)

	if !hasImageExtension(path) {
		return false
	}

	for _, token := range tokenize(path) {
		if _, bad := adNavTokens[token]; bad {
			return false
		}

		if _, bad := smallSizeTokens[token]; bad {
			return false
		}
	}

	if hasSmallDimensions(path) {
		return false
	}

	return true
}

// Probe fetches only the image header bytes and decodes the image
// config. Decode failures fail open: the URL already passed the static
// heuristics and an undecodable format (e.g. WebP) is not evidence
// against it. Images that decode to under 150px in either dimension are
// rejected.
func (f *Filter) Probe(ctx context.Context, rawURL string) bool {
	if !f.probeEnabled {
		return true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return true
	}

	req.Header.Set("Range", probeRangeHint)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return true
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	header, err := io.ReadAll(io.LimitReader(resp.Body, probeMaxBytes))
	if err != nil {
		return true
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(header))
	if err != nil {
		return true
	}

	return cfg.Width >= minContentDimension && cfg.Height >= minContentDimension
}

func hasImageExtension(path string) bool {
	dot := strings.LastIndex(path, ".")
	if dot < 0 {
		return false
	}

	_, ok := imageExtensions[path[dot:]]

	return ok
}

// hasSmallDimensions reports whether the path embeds a WIDTHxHEIGHT
// pattern with either dimension under the content floor.
func hasSmallDimensions(path string) bool {
	for _, match := range dimensionPattern.FindAllStringSubmatch(path, -1) {
		width, werr := strconv.Atoi(match[1])
		height, herr := strconv.Atoi(match[2])

		if werr != nil || herr != nil {
			continue
		}

		if width < minContentDimension || height < minContentDimension {
			return true
		}
	}

	return false
}

func tokenize(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
