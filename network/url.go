package network

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

var errMalformedDataURL = errors.New("malformed data URL")

// ResolveURL resolves an image or page reference against base. data: URLs
// pass through untouched; with no base the reference is only normalised.
func ResolveURL(base, ref string) (string, error) {
	switch {
	case ref == "":
		return base, nil
	case IsDataURL(ref):
		return ref, nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid reference URL: %w", err)
	}
	if base != "" && !u.IsAbs() {
		b, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("invalid base URL: %w", err)
		}
		u = b.ResolveReference(u)
	}
	return u.String(), nil
}

// IsDataURL reports whether src is an inline data: URL.
func IsDataURL(src string) bool {
	return len(src) >= 5 && strings.EqualFold(src[:5], "data:")
}

// DecodeDataURL returns the payload and media type of
// data:[<mediatype>][;base64],<data>. The media type defaults to
// text/plain.
func DecodeDataURL(src string) ([]byte, string, error) {
	if !IsDataURL(src) {
		return nil, "", fmt.Errorf("%.32q: %w", src, errMalformedDataURL)
	}
	header, payload, ok := strings.Cut(src[5:], ",")
	if !ok {
		return nil, "", fmt.Errorf("missing comma: %w", errMalformedDataURL)
	}

	params := strings.Split(header, ";")
	mediaType := "text/plain"
	if params[0] != "" {
		mediaType = strings.ToLower(params[0])
	}
	if params[len(params)-1] == "base64" {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, "", fmt.Errorf("bad base64 payload: %w", err)
		}
		return data, mediaType, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, "", fmt.Errorf("bad escaped payload: %w", err)
	}
	return []byte(text), mediaType, nil
}

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".ico":  "image/x-icon",
}

// ImageType guesses the content type of an image source from its file
// extension, ignoring query and fragment.
func ImageType(src string) string {
	if t, ok := imageTypes[strings.ToLower(path.Ext(sourcePath(src)))]; ok {
		return t
	}
	return "application/octet-stream"
}

// sourcePath is the path part of src, or src itself when it does not parse.
func sourcePath(src string) string {
	if u, err := url.Parse(src); err == nil && u.Path != "" {
		return u.Path
	}
	return src
}
